package mela

import (
	"strings"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// record mirrors the on-disk .melarecipe JSON document. Every field is
// optional; absent fields decode to their zero value.
type record struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Yield        string   `json:"yield"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	TotalTime    string   `json:"totalTime"`
	Link         string   `json:"link"`
	Date         float64  `json:"date"`
	Ingredients  string   `json:"ingredients"`
	Instructions string   `json:"instructions"`
	Notes        string   `json:"notes"`
	Nutrition    string   `json:"nutrition"`
	Categories   []string `json:"categories"`
	Tags         []string `json:"tags"`
	Favorite     bool     `json:"favorite"`
	WantToCook   bool     `json:"wantToCook"`
	Images       []string `json:"images"`
}

// export converts the raw record into a domain recipe. fallbackID is used
// when the document carries no id of its own, typically the entry name.
func (r *record) export(fallbackID string) *domain.ExportRecipe {
	id := r.ID
	if id == "" {
		id = fallbackID
	}
	return &domain.ExportRecipe{
		ID:           id,
		Title:        r.Title,
		Text:         r.Text,
		Yield:        r.Yield,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		TotalTime:    r.TotalTime,
		Link:         r.Link,
		Date:         r.Date,
		Ingredients:  splitLines(r.Ingredients),
		Instructions: splitLines(r.Instructions),
		Notes:        r.Notes,
		Nutrition:    r.Nutrition,
		Categories:   r.Categories,
		Tags:         r.Tags,
		Favorite:     r.Favorite,
		WantToCook:   r.WantToCook,
		HasImage:     len(r.Images) > 0,
	}
}

// splitLines breaks a newline-joined block into classified lines. Blank
// lines are dropped; a leading "#" marks a section header, with the marker
// stripped.
func splitLines(block string) []domain.ExportLine {
	if block == "" {
		return nil
	}
	var lines []domain.ExportLine
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			lines = append(lines, domain.ExportLine{
				Text:   strings.TrimSpace(strings.TrimLeft(line, "#")),
				Header: true,
			})
			continue
		}
		lines = append(lines, domain.ExportLine{Text: line})
	}
	return lines
}
