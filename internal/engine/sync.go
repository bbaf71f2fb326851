package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/slug"
)

// syncAll processes every recipe in source order, isolating failures to
// the recipe they occur in. Returns handles for the image phase covering
// every recipe that made it onto the target and has an image to upload.
func (e *Engine) syncAll(ctx context.Context, run *domain.Run, batch []*batchItem, table *organizerTable) []*domain.RecipeHandle {
	claimed := make(map[string]struct{}, len(batch))
	var handles []*domain.RecipeHandle

	for i, item := range batch {
		if ctx.Err() != nil {
			e.log.Warn("run cancelled after %d/%d recipes", i, len(batch))
			break
		}

		run.Position = i + 1
		run.Current = item.draft.Title
		run.UpdatedAt = e.clk.Now()
		e.saveRun(ctx, run)

		outcome := e.syncOne(ctx, item, table, claimed, i+1)
		run.Outcomes = append(run.Outcomes, outcome)
		run.UpdatedAt = e.clk.Now()
		e.saveRun(ctx, run)

		if err := e.reporter.RecipeFinished(ctx, outcome); err != nil {
			e.log.Error("reporting recipe %q: %v", outcome.Title, err)
		}

		if !e.dryRun && outcome.Status != domain.OutcomeFailed && item.hasImage {
			handles = append(handles, &domain.RecipeHandle{
				RecipeID: item.id,
				Slug:     outcome.Slug,
				Title:    outcome.FinalTitle,
			})
		}

		// Breathe between recipes so a small server is not hammered.
		if e.pause > 0 && i < len(batch)-1 {
			select {
			case <-ctx.Done():
			case <-e.clk.After(e.pause):
			}
		}
	}
	return handles
}

// syncOne runs the stub and patch sequence for a single draft. It never
// returns an error: every failure mode lands in the outcome.
func (e *Engine) syncOne(ctx context.Context, item *batchItem, table *organizerTable, claimed map[string]struct{}, index int) *domain.RecipeOutcome {
	draft := item.draft
	outcome := &domain.RecipeOutcome{
		Index:      index,
		Title:      draft.Title,
		FinalTitle: draft.Title,
	}

	// Resolve organizer refs before creating anything, so a recipe with
	// an unresolvable category never leaves an empty stub behind.
	categories, missingCats := table.refs(domain.KindCategory, draft.Categories)
	tags, missingTags := table.refs(domain.KindTag, draft.Tags)
	if missing := append(missingCats, missingTags...); len(missing) > 0 {
		outcome.Status = domain.OutcomeFailed
		outcome.Stage = domain.StagePatch
		outcome.Reason = fmt.Sprintf("%v: %s", domain.ErrMissingOrganizer, strings.Join(missing, ", "))
		e.log.Error("recipe %q failed: %s", draft.Title, outcome.Reason)
		return outcome
	}

	if e.dryRun {
		finalTitle, finalSlug, err := e.claimLocal(draft.Title, claimed)
		if err != nil {
			outcome.Status = domain.OutcomeFailed
			outcome.Stage = domain.StageStub
			outcome.Reason = err.Error()
			return outcome
		}
		outcome.Status = domain.OutcomeSkipped
		outcome.FinalTitle = finalTitle
		outcome.Slug = finalSlug
		return outcome
	}

	finalTitle, finalSlug, err := e.createStub(ctx, draft.Title, claimed)
	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Stage = domain.StageStub
		outcome.Reason = err.Error()
		e.log.Error("recipe %q failed at stub: %v", draft.Title, err)
		return outcome
	}
	outcome.FinalTitle = finalTitle
	outcome.Slug = finalSlug
	if finalTitle != draft.Title {
		outcome.Status = domain.OutcomeRenamed
		e.log.Info("recipe %q created as %q", draft.Title, finalTitle)
	} else {
		outcome.Status = domain.OutcomeCreated
	}

	// Patch under the final title so stub and content agree.
	patched := *draft
	patched.Title = finalTitle
	if err := e.target.UpdateRecipe(ctx, finalSlug, &patched, categories, tags); err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Stage = domain.StagePatch
		outcome.Reason = err.Error()
		e.log.Error("recipe %q failed at patch: %v", finalTitle, err)
		return outcome
	}

	e.log.Debug("recipe %q synced as /recipe/%s", finalTitle, finalSlug)
	return outcome
}

// createStub submits the title, renaming with a numeric suffix when the
// name is already taken, either on the target or by an earlier recipe in
// this run. Attempts are capped rather than looping forever.
func (e *Engine) createStub(ctx context.Context, title string, claimed map[string]struct{}) (string, string, error) {
	candidate := title
	for attempt := 1; attempt <= e.renameCap; attempt++ {
		if _, taken := claimed[slug.Make(candidate)]; taken {
			candidate = renameTitle(title, attempt+1)
			continue
		}
		createdSlug, err := e.target.CreateRecipe(ctx, candidate)
		if err == nil {
			claimed[createdSlug] = struct{}{}
			return candidate, createdSlug, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return "", "", err
		}
		e.log.Debug("title %q is taken, trying a suffix", candidate)
		candidate = renameTitle(title, attempt+1)
	}
	return "", "", fmt.Errorf("%q: %w", title, domain.ErrDuplicateUnresolved)
}

// claimLocal predicts the stub result for a dry run without any target
// call. Earlier recipes in the same batch still count as collisions.
func (e *Engine) claimLocal(title string, claimed map[string]struct{}) (string, string, error) {
	candidate := title
	for attempt := 1; attempt <= e.renameCap; attempt++ {
		s := slug.Make(candidate)
		if _, taken := claimed[s]; !taken {
			claimed[s] = struct{}{}
			return candidate, s, nil
		}
		candidate = renameTitle(title, attempt+1)
	}
	return "", "", fmt.Errorf("%q: %w", title, domain.ErrDuplicateUnresolved)
}

// renameTitle builds the nth candidate for a duplicated title: the base
// title for n = 1, then "Title (2)", "Title (3)", and so on.
func renameTitle(title string, n int) string {
	return fmt.Sprintf("%s (%d)", title, n)
}
