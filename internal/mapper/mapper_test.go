package mapper

import (
	"testing"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

func TestMapBasicFields(t *testing.T) {
	src := &domain.ExportRecipe{
		ID:        "r1",
		Title:     "  Pasta Carbonara  ",
		Text:      "A Roman classic.",
		Yield:     "4 servings",
		PrepTime:  "15 min",
		CookTime:  "20 min",
		TotalTime: "35 min",
		Link:      "https://example.com/carbonara",
	}

	d := Map(src)

	if d.Title != "Pasta Carbonara" {
		t.Errorf("title not trimmed: %q", d.Title)
	}
	if d.Description != "A Roman classic." {
		t.Errorf("unexpected description: %q", d.Description)
	}
	if d.Yield != "4 servings" {
		t.Errorf("unexpected yield: %q", d.Yield)
	}
	if d.PrepTime != "PT15M" || d.CookTime != "PT20M" || d.TotalTime != "PT35M" {
		t.Errorf("times not converted: %q %q %q", d.PrepTime, d.CookTime, d.TotalTime)
	}
	if d.SourceURL != "https://example.com/carbonara" {
		t.Errorf("unexpected source url: %q", d.SourceURL)
	}
	if !d.Added.IsZero() {
		t.Errorf("expected zero Added for a dateless recipe, got %v", d.Added)
	}
}

func TestMapUntitledFallback(t *testing.T) {
	d := Map(&domain.ExportRecipe{Title: "   "})
	if d.Title != "Untitled" {
		t.Errorf("expected Untitled fallback, got %q", d.Title)
	}
}

func TestMapDate(t *testing.T) {
	// 86400 seconds past the 2001-01-01 reference date.
	d := Map(&domain.ExportRecipe{Title: "Dated", Date: 86400})
	want := time.Date(2001, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !d.Added.Equal(want) {
		t.Errorf("Added = %v, want %v", d.Added, want)
	}
}

func TestMapIngredientGroups(t *testing.T) {
	src := &domain.ExportRecipe{
		Title: "Pizza",
		Ingredients: []domain.ExportLine{
			{Text: "Dough", Header: true},
			{Text: "500g flour"},
			{Text: "300ml water"},
			{Text: "Topping", Header: true},
			{Text: "tomatoes"},
		},
	}

	d := Map(src)

	if len(d.Ingredients) != 3 {
		t.Fatalf("expected 3 ingredients, got %d", len(d.Ingredients))
	}
	want := []domain.IngredientDraft{
		{GroupTitle: "Dough", Text: "500g flour"},
		{GroupTitle: "", Text: "300ml water"},
		{GroupTitle: "Topping", Text: "tomatoes"},
	}
	for i := range want {
		if d.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d: got %+v, want %+v", i, d.Ingredients[i], want[i])
		}
	}
}

func TestMapInstructions(t *testing.T) {
	src := &domain.ExportRecipe{
		Title: "Pizza",
		Instructions: []domain.ExportLine{
			{Text: "Prep", Header: true},
			{Text: "Knead the dough."},
			{Text: "Let it rise."},
		},
	}

	d := Map(src)

	if len(d.Instructions) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(d.Instructions))
	}
	if d.Instructions[0].Title != "Prep" || d.Instructions[0].Text != "" {
		t.Errorf("header step wrong: %+v", d.Instructions[0])
	}
	if d.Instructions[1].Text != "Knead the dough." || d.Instructions[1].Title != "" {
		t.Errorf("text step wrong: %+v", d.Instructions[1])
	}
	if d.Instructions[2].Text != "Let it rise." {
		t.Errorf("order not preserved: %+v", d.Instructions[2])
	}
}

func TestMapNotes(t *testing.T) {
	d := Map(&domain.ExportRecipe{Title: "X", Notes: "Freezes well.", Nutrition: "450 kcal"})
	if len(d.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(d.Notes))
	}
	if d.Notes[0].Title != "Notes" || d.Notes[0].Text != "Freezes well." {
		t.Errorf("notes entry wrong: %+v", d.Notes[0])
	}
	if d.Notes[1].Title != "Nutrition" || d.Notes[1].Text != "450 kcal" {
		t.Errorf("nutrition entry wrong: %+v", d.Notes[1])
	}

	d = Map(&domain.ExportRecipe{Title: "X"})
	if len(d.Notes) != 0 {
		t.Errorf("expected no notes, got %+v", d.Notes)
	}
}

func TestMapTags(t *testing.T) {
	tests := []struct {
		name string
		src  *domain.ExportRecipe
		want []string
	}{
		{
			name: "marker only",
			src:  &domain.ExportRecipe{Title: "X"},
			want: []string{ImportTag},
		},
		{
			name: "flags ordered before source tags",
			src: &domain.ExportRecipe{
				Title: "X", Favorite: true, WantToCook: true,
				Tags: []string{"quick", "vegetarian"},
			},
			want: []string{ImportTag, FavoriteTag, WantToCookTag, "quick", "vegetarian"},
		},
		{
			name: "source duplicates of derived tags dropped",
			src: &domain.ExportRecipe{
				Title: "X", Favorite: true,
				Tags: []string{"favorite", "quick", "quick", " ", "mela-import"},
			},
			want: []string{ImportTag, FavoriteTag, "quick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Map(tt.src)
			if len(d.Tags) != len(tt.want) {
				t.Fatalf("got %v, want %v", d.Tags, tt.want)
			}
			for i := range tt.want {
				if d.Tags[i] != tt.want[i] {
					t.Errorf("tag %d: got %q, want %q", i, d.Tags[i], tt.want[i])
				}
			}
		})
	}
}

func TestMapCategories(t *testing.T) {
	d := Map(&domain.ExportRecipe{
		Title:      "X",
		Categories: []string{"Dinner", " Dinner ", "", "Italian"},
	})
	want := []string{"Dinner", "Italian"}
	if len(d.Categories) != len(want) {
		t.Fatalf("got %v, want %v", d.Categories, want)
	}
	for i := range want {
		if d.Categories[i] != want[i] {
			t.Errorf("category %d: got %q, want %q", i, d.Categories[i], want[i])
		}
	}
}
