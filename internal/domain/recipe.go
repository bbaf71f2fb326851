// Package domain defines the core types and interfaces for the migration engine.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// ExportRecipe is one recipe decoded from a Mela export container.
type ExportRecipe struct {
	ID           string // source-internal id, or the entry name when absent
	Title        string
	Text         string // description
	Yield        string
	PrepTime     string // freeform source strings ("30 min", "1 hour", ...)
	CookTime     string
	TotalTime    string
	Link         string  // original source URL
	Date         float64 // seconds since 2001-01-01 UTC (NSDate), 0 = absent
	Ingredients  []ExportLine
	Instructions []ExportLine
	Notes        string
	Nutrition    string
	Categories   []string
	Tags         []string
	Favorite     bool
	WantToCook   bool
	HasImage     bool
}

// ExportLine is one ingredient or instruction line. Header lines (Mela's
// "#" prefix) mark section boundaries; order is significant.
type ExportLine struct {
	Text   string
	Header bool
}

// RecipeDraft is the target-shaped form of one export recipe, produced by
// the mapper before any network write.
type RecipeDraft struct {
	Title        string
	Description  string
	Yield        string
	PrepTime     string // ISO-8601 duration or freeform passthrough; "" = omit
	CookTime     string
	TotalTime    string
	SourceURL    string
	Added        time.Time // zero = omit
	Ingredients  []IngredientDraft
	Instructions []InstructionDraft
	Notes        []NoteDraft
	Categories   []string // de-duplicated, source order
	Tags         []string // import marker first, then conditional + source tags
}

// IngredientDraft is one ingredient line. GroupTitle is set on the first
// ingredient of a section; the free-text line is never parsed further.
type IngredientDraft struct {
	GroupTitle string
	Text       string
}

// InstructionDraft is one instruction step. A header line becomes a step
// carrying only a title; ordinary lines carry only text.
type InstructionDraft struct {
	Title string
	Text  string
}

// NoteDraft is a titled free-text note attached to the recipe.
type NoteDraft struct {
	Title string
	Text  string
}

// ImageBlob is a decoded recipe image ready for upload.
type ImageBlob struct {
	Data []byte
	Ext  string // "png", "webp", or "jpg", sniffed from magic bytes
}
