// Package engine implements the migration run state machine: decode the
// export, resolve organizers, sync recipes, upload images, report.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
	"github.com/hammamikhairi/mela2mealie/internal/mapper"
)

// Option configures the engine.
type Option func(*Engine)

// WithDryRun switches the run to pure simulation: the target is never
// called, not even to resolve organizers.
func WithDryRun(on bool) Option {
	return func(e *Engine) { e.dryRun = on }
}

// WithSkipImages disables the image upload phase.
func WithSkipImages(on bool) Option {
	return func(e *Engine) { e.skipImages = on }
}

// WithRenameCap sets how many suffixed titles are tried for a duplicate
// before the recipe is failed.
func WithRenameCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.renameCap = n
		}
	}
}

// WithRecipePause sets the idle delay between recipes, which keeps a
// burst of creates from hammering a small self-hosted server.
func WithRecipePause(d time.Duration) Option {
	return func(e *Engine) { e.pause = d }
}

// WithClock overrides the clock used for pacing and timestamps.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) { e.clk = clk }
}

// Engine drives one migration run end to end. It depends only on
// interfaces and is fully testable with fakes.
type Engine struct {
	source   domain.ExportSource
	target   domain.RecipeTarget
	store    domain.RunStore
	reporter domain.Reporter
	log      *logger.Logger
	clk      clock.Clock

	dryRun     bool
	skipImages bool
	renameCap  int
	pause      time.Duration
}

// SourceLabeler is an optional interface that ExportSource implementations
// can satisfy to name themselves in run state and reports.
type SourceLabeler interface {
	Path() string
}

// New creates a migration engine with the given dependencies and options.
// target may be nil when the engine is configured with WithDryRun.
func New(source domain.ExportSource, target domain.RecipeTarget, store domain.RunStore, reporter domain.Reporter, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		target:    target,
		store:     store,
		reporter:  reporter,
		log:       log,
		clk:       clock.WallClock,
		renameCap: 5,
		pause:     300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// batchItem pairs a mapped draft with its source identity.
type batchItem struct {
	id       string
	draft    *domain.RecipeDraft
	hasImage bool
}

// Run executes the full pipeline. The returned report lists every recipe
// that was processed. A non-nil error means a precondition failed before
// any recipe was written: an unreadable or empty export, an unreachable
// target, or rejected credentials. Per-recipe failures never surface
// here; they land in the report.
func (e *Engine) Run(ctx context.Context) (*domain.RunReport, error) {
	run := &domain.Run{
		ID:        generateID(),
		DryRun:    e.dryRun,
		Phase:     domain.PhaseDecoding,
		StartedAt: e.clk.Now(),
		UpdatedAt: e.clk.Now(),
	}
	if labeled, ok := e.source.(SourceLabeler); ok {
		run.Source = labeled.Path()
	}
	e.saveRun(ctx, run)
	e.log.Info("run %s started (dry-run=%t)", run.ID, e.dryRun)

	batch, err := e.decode(ctx, run)
	if err != nil {
		return nil, err
	}

	run.Phase = domain.PhaseResolving
	run.UpdatedAt = e.clk.Now()
	e.saveRun(ctx, run)
	table, err := e.resolveOrganizers(ctx, batch)
	if err != nil {
		return nil, err
	}

	run.Phase = domain.PhaseSyncing
	run.UpdatedAt = e.clk.Now()
	e.saveRun(ctx, run)
	handles := e.syncAll(ctx, run, batch, table)

	if !e.dryRun && !e.skipImages {
		run.Phase = domain.PhaseUploading
		run.Current = ""
		run.UpdatedAt = e.clk.Now()
		e.saveRun(ctx, run)
		e.uploadAll(ctx, run, handles)
	}

	run.Phase = domain.PhaseReporting
	run.Current = ""
	run.UpdatedAt = e.clk.Now()
	e.saveRun(ctx, run)

	report := &domain.RunReport{
		Source:   run.Source,
		DryRun:   e.dryRun,
		Outcomes: run.Outcomes,
		Counts:   domain.Tally(run.Outcomes),
		Elapsed:  e.clk.Now().Sub(run.StartedAt),
	}
	if err := e.reporter.RunFinished(ctx, report); err != nil {
		e.log.Error("delivering final report: %v", err)
	}
	e.log.Info("run %s finished: %d created, %d renamed, %d failed, %d skipped",
		run.ID, report.Counts.Created, report.Counts.Renamed, report.Counts.Failed, report.Counts.Skipped)
	return report, nil
}

// decode walks the export once, mapping every record into a draft. Only
// recipe text lives in memory afterwards; images stay in the container
// until the upload phase asks for them.
func (e *Engine) decode(ctx context.Context, run *domain.Run) ([]*batchItem, error) {
	var batch []*batchItem
	err := e.source.Walk(ctx, func(rec *domain.ExportRecipe) error {
		batch = append(batch, &batchItem{
			id:       rec.ID,
			draft:    mapper.Map(rec),
			hasImage: rec.HasImage,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("decoding export: %w", domain.ErrEmptyExport)
	}

	run.Total = len(batch)
	run.UpdatedAt = e.clk.Now()
	e.saveRun(ctx, run)
	e.log.Info("decoded %d recipes", len(batch))
	return batch, nil
}

// uploadAll fetches and uploads each recipe's image in order, one blob in
// memory at a time. An upload failure downgrades the recipe's outcome
// rather than failing it; the recipe itself already exists.
func (e *Engine) uploadAll(ctx context.Context, run *domain.Run, handles []*domain.RecipeHandle) {
	if len(handles) == 0 {
		return
	}
	bySlug := make(map[string]*domain.RecipeOutcome, len(run.Outcomes))
	for _, o := range run.Outcomes {
		if o.Slug != "" {
			bySlug[o.Slug] = o
		}
	}

	uploaded := 0
	for _, h := range handles {
		if ctx.Err() != nil {
			e.log.Warn("run cancelled during image uploads")
			break
		}
		run.Current = h.Title
		run.UpdatedAt = e.clk.Now()
		e.saveRun(ctx, run)

		outcome := bySlug[h.Slug]

		img, err := e.source.Image(ctx, h.RecipeID)
		if err != nil {
			e.markImageFailed(outcome, fmt.Sprintf("decoding image: %v", err))
			continue
		}
		if img == nil {
			continue
		}
		if err := e.target.UploadImage(ctx, h.Slug, img); err != nil {
			e.markImageFailed(outcome, err.Error())
			continue
		}
		if outcome != nil {
			outcome.Image = domain.ImageUploaded
		}
		uploaded++
		e.log.Debug("uploaded %s image for %q", img.Ext, h.Title)
	}

	run.UpdatedAt = e.clk.Now()
	e.saveRun(ctx, run)
	e.log.Info("uploaded %d/%d images", uploaded, len(handles))
}

func (e *Engine) markImageFailed(outcome *domain.RecipeOutcome, reason string) {
	if outcome == nil {
		return
	}
	outcome.Image = domain.ImageFailed
	outcome.ImageNote = reason
	e.log.Warn("image upload for %q failed: %s", outcome.FinalTitle, reason)
}

// saveRun persists run state. Store failures are logged, not fatal; the
// store feeds the UI and watchdog, it is not the source of truth.
func (e *Engine) saveRun(ctx context.Context, run *domain.Run) {
	if err := e.store.Save(ctx, run); err != nil {
		e.log.Error("saving run state: %v", err)
	}
}
