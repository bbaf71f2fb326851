package mela

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", e.name, err)
		}
		if _, err := f.Write(e.data); err != nil {
			t.Fatalf("writing zip entry %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func writeExport(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing export: %v", err)
	}
	return path
}

func recipeJSON(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshaling recipe: %v", err)
	}
	return data
}

func walkTitles(t *testing.T, a *Archive) []string {
	t.Helper()
	var titles []string
	err := a.Walk(context.Background(), func(rec *domain.ExportRecipe) error {
		titles = append(titles, rec.Title)
		return nil
	})
	if err != nil {
		t.Fatalf("walking archive: %v", err)
	}
	return titles
}

func TestOpenFlatArchive(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	data := buildZip(t, []zipEntry{
		{"pasta.melarecipe", recipeJSON(t, map[string]any{"id": "r1", "title": "Pasta"})},
		{"tacos.melarecipe", recipeJSON(t, map[string]any{"id": "r2", "title": "Tacos"})},
	})
	path := writeExport(t, "export.melarecipes", data)

	a, err := Open(path, log)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer a.Close()

	titles := walkTitles(t, a)
	if len(titles) != 2 || titles[0] != "Pasta" || titles[1] != "Tacos" {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestOpenNestedArchive(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	inner1 := buildZip(t, []zipEntry{
		{"soup.melarecipe", recipeJSON(t, map[string]any{"id": "r1", "title": "Soup"})},
	})
	inner2 := buildZip(t, []zipEntry{
		{"stew.melarecipe", recipeJSON(t, map[string]any{"id": "r2", "title": "Stew"})},
		{"bread.melarecipe", recipeJSON(t, map[string]any{"id": "r3", "title": "Bread"})},
	})
	outer := buildZip(t, []zipEntry{
		{"soups.melarecipes", inner1},
		{"baking.melarecipes", inner2},
	})
	path := writeExport(t, "all.melarecipes", outer)

	a, err := Open(path, log)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer a.Close()

	titles := walkTitles(t, a)
	want := []string{"Soup", "Stew", "Bread"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d recipes, got %d: %v", len(want), len(titles), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("recipe %d: got %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestOpenEmptyArchive(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := writeExport(t, "empty.melarecipes", buildZip(t, nil))

	_, err := Open(path, log)
	if !errors.Is(err, domain.ErrEmptyExport) {
		t.Fatalf("expected ErrEmptyExport, got %v", err)
	}
}

func TestOpenSingleRecipeFile(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	doc := recipeJSON(t, map[string]any{"title": "Lone Curry"})
	path := writeExport(t, "curry.melarecipe", doc)

	a, err := Open(path, log)
	if err != nil {
		t.Fatalf("opening single recipe: %v", err)
	}
	defer a.Close()

	var got *domain.ExportRecipe
	err = a.Walk(context.Background(), func(rec *domain.ExportRecipe) error {
		got = rec
		return nil
	})
	if err != nil {
		t.Fatalf("walking: %v", err)
	}
	if got == nil || got.Title != "Lone Curry" {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	// No id field in the document, so the identity falls back to the file name.
	if got.ID != "curry" {
		t.Errorf("expected fallback id %q, got %q", "curry", got.ID)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	path := writeExport(t, "noise.bin", []byte("definitely not a recipe"))

	if _, err := Open(path, log); err == nil {
		t.Fatal("expected an error for a non-export file")
	}
}

func TestWalkSkipsInvalidEntries(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	data := buildZip(t, []zipEntry{
		{"good.melarecipe", recipeJSON(t, map[string]any{"id": "ok", "title": "Good"})},
		{"broken.melarecipe", []byte("{not json")},
		{"notes.txt", []byte("shopping list")},
	})
	path := writeExport(t, "mixed.melarecipes", data)

	a, err := Open(path, log)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer a.Close()

	titles := walkTitles(t, a)
	if len(titles) != 1 || titles[0] != "Good" {
		t.Fatalf("expected only the valid recipe, got %v", titles)
	}
}

func TestImage(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, []byte("fakepixels")...)
	data := buildZip(t, []zipEntry{
		{"photo.melarecipe", recipeJSON(t, map[string]any{
			"id": "r1", "title": "With Photo",
			"images": []string{base64.StdEncoding.EncodeToString(png)},
		})},
		{"plain.melarecipe", recipeJSON(t, map[string]any{"id": "r2", "title": "No Photo"})},
	})
	path := writeExport(t, "export.melarecipes", data)

	a, err := Open(path, log)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer a.Close()

	ctx := context.Background()

	blob, err := a.Image(ctx, "r1")
	if err != nil {
		t.Fatalf("fetching image: %v", err)
	}
	if blob == nil {
		t.Fatal("expected an image blob")
	}
	if blob.Ext != "png" {
		t.Errorf("expected png, got %s", blob.Ext)
	}
	if !bytes.Equal(blob.Data, png) {
		t.Error("image bytes do not round-trip")
	}

	blob, err = a.Image(ctx, "r2")
	if err != nil {
		t.Fatalf("fetching absent image: %v", err)
	}
	if blob != nil {
		t.Fatalf("expected no blob for an imageless recipe, got %+v", blob)
	}

	if _, err := a.Image(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestSniffExt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2}, "png"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0}, "jpg"},
		{"unknown", []byte("??"), "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffExt(tt.data); got != tt.want {
				t.Errorf("sniffExt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.ExportLine
	}{
		{
			name:  "plain lines",
			input: "2 eggs\n1 cup flour",
			want: []domain.ExportLine{
				{Text: "2 eggs"},
				{Text: "1 cup flour"},
			},
		},
		{
			name:  "headers and blanks",
			input: "# Dough\n\n500g flour\n\n## Topping\n tomatoes ",
			want: []domain.ExportLine{
				{Text: "Dough", Header: true},
				{Text: "500g flour"},
				{Text: "Topping", Header: true},
				{Text: "tomatoes"},
			},
		},
		{
			name:  "empty block",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
