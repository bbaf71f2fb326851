package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Compile-time interface check.
var _ domain.Reporter = (*JSONReporter)(nil)

// manifest is the machine-readable run record written to disk.
type manifest struct {
	GeneratedAt    string        `json:"generated_at"`
	Source         string        `json:"source"`
	DryRun         bool          `json:"dry_run"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	Totals         manifestTotal `json:"totals"`
	Recipes        []recipeEntry `json:"recipes"`
}

type manifestTotal struct {
	Created        int `json:"created"`
	Renamed        int `json:"renamed"`
	Failed         int `json:"failed"`
	Skipped        int `json:"skipped"`
	ImagesUploaded int `json:"images_uploaded"`
	ImagesFailed   int `json:"images_failed"`
}

type recipeEntry struct {
	Index      int    `json:"index"`
	Title      string `json:"title"`
	FinalTitle string `json:"final_title,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Image      string `json:"image,omitempty"`
	ImageNote  string `json:"image_note,omitempty"`
}

// JSONReporter writes the run manifest to a file when the run finishes.
// Per-recipe events are ignored; the manifest is written in one piece.
type JSONReporter struct {
	path string
	log  *logger.Logger
}

// NewJSONReporter creates a reporter that writes its manifest to path.
func NewJSONReporter(path string, log *logger.Logger) *JSONReporter {
	return &JSONReporter{path: path, log: log}
}

// RecipeFinished is a no-op; the manifest is assembled at the end.
func (r *JSONReporter) RecipeFinished(ctx context.Context, o *domain.RecipeOutcome) error {
	return nil
}

// RunFinished writes the manifest.
func (r *JSONReporter) RunFinished(ctx context.Context, rep *domain.RunReport) error {
	m := manifest{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Source:         rep.Source,
		DryRun:         rep.DryRun,
		ElapsedSeconds: rep.Elapsed.Seconds(),
		Totals: manifestTotal{
			Created:        rep.Counts.Created,
			Renamed:        rep.Counts.Renamed,
			Failed:         rep.Counts.Failed,
			Skipped:        rep.Counts.Skipped,
			ImagesUploaded: rep.Counts.ImagesUploaded,
			ImagesFailed:   rep.Counts.ImagesFailed,
		},
		Recipes: make([]recipeEntry, 0, len(rep.Outcomes)),
	}
	for _, o := range rep.Outcomes {
		entry := recipeEntry{
			Index:  o.Index,
			Title:  o.Title,
			Slug:   o.Slug,
			Status: o.Status.String(),
			Reason: o.Reason,
		}
		if o.Renamed() {
			entry.FinalTitle = o.FinalTitle
		}
		if o.Stage != domain.StageNone {
			entry.Stage = o.Stage.String()
		}
		if o.Image != domain.ImageNone {
			entry.Image = o.Image.String()
			entry.ImageNote = o.ImageNote
		}
		m.Recipes = append(m.Recipes, entry)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal manifest: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("report: write manifest: %w", err)
	}
	r.log.Info("wrote run manifest to %s", r.path)
	return nil
}
