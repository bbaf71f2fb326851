// Package mapper transforms decoded export recipes into drafts shaped for
// the target service. Mapping is pure: no I/O, no failures. Malformed
// fields degrade to empty values so a single bad field never rejects a
// whole recipe.
package mapper

import (
	"strings"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// ImportTag marks every migrated recipe so they can be found as a group
// afterwards.
const ImportTag = "mela-import"

// Tags derived from source flags.
const (
	FavoriteTag   = "favorite"
	WantToCookTag = "want-to-cook"
)

// nsDateEpoch is the reference point for the export's date field, which
// counts seconds since 2001-01-01 UTC.
var nsDateEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Map converts one export recipe into a target draft.
func Map(src *domain.ExportRecipe) *domain.RecipeDraft {
	d := &domain.RecipeDraft{
		Title:       strings.TrimSpace(src.Title),
		Description: src.Text,
		Yield:       src.Yield,
		PrepTime:    ISODuration(src.PrepTime),
		CookTime:    ISODuration(src.CookTime),
		TotalTime:   ISODuration(src.TotalTime),
		SourceURL:   src.Link,
	}
	if d.Title == "" {
		d.Title = "Untitled"
	}
	if src.Date != 0 {
		d.Added = nsDateEpoch.Add(time.Duration(src.Date * float64(time.Second)))
	}

	d.Ingredients = mapIngredients(src.Ingredients)
	d.Instructions = mapInstructions(src.Instructions)

	if src.Notes != "" {
		d.Notes = append(d.Notes, domain.NoteDraft{Title: "Notes", Text: src.Notes})
	}
	if src.Nutrition != "" {
		d.Notes = append(d.Notes, domain.NoteDraft{Title: "Nutrition", Text: src.Nutrition})
	}

	d.Categories = dedupe(src.Categories, nil)
	d.Tags = deriveTags(src)
	return d
}

// mapIngredients flattens classified lines into draft entries. A header
// line does not produce an entry of its own; its text becomes the group
// title of the next ingredient.
func mapIngredients(lines []domain.ExportLine) []domain.IngredientDraft {
	var out []domain.IngredientDraft
	pending := ""
	for _, ln := range lines {
		if ln.Header {
			pending = ln.Text
			continue
		}
		out = append(out, domain.IngredientDraft{GroupTitle: pending, Text: ln.Text})
		pending = ""
	}
	return out
}

// mapInstructions turns header lines into titled steps and plain lines
// into text steps, preserving order.
func mapInstructions(lines []domain.ExportLine) []domain.InstructionDraft {
	var out []domain.InstructionDraft
	for _, ln := range lines {
		if ln.Header {
			out = append(out, domain.InstructionDraft{Title: ln.Text})
			continue
		}
		out = append(out, domain.InstructionDraft{Text: ln.Text})
	}
	return out
}

// deriveTags builds the tag list: the fixed import marker first, then the
// flag-derived tags, then the source's own tags with duplicates removed.
func deriveTags(src *domain.ExportRecipe) []string {
	tags := []string{ImportTag}
	if src.Favorite {
		tags = append(tags, FavoriteTag)
	}
	if src.WantToCook {
		tags = append(tags, WantToCookTag)
	}
	return dedupe(src.Tags, tags)
}

// dedupe appends the trimmed non-empty members of names onto base,
// dropping anything already present. Order is preserved.
func dedupe(names, base []string) []string {
	seen := make(map[string]struct{}, len(base)+len(names))
	for _, n := range base {
		seen[n] = struct{}{}
	}
	out := base
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
