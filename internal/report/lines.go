// Package report delivers migration results to the user.
// lines.go centralises every printed string so wording stays in one place.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/mapper"
)

// ── Per-recipe lines ─────────────────────────────────────────────

// LineOutcome renders the one-line result for a synced recipe.
func LineOutcome(o *domain.RecipeOutcome) string {
	prefix := fmt.Sprintf("[%d] %s", o.Index, o.Title)
	switch o.Status {
	case domain.OutcomeCreated:
		return fmt.Sprintf("%s → /recipe/%s", prefix, o.Slug)
	case domain.OutcomeRenamed:
		return fmt.Sprintf("%s → /recipe/%s (renamed to %q)", prefix, o.Slug, o.FinalTitle)
	case domain.OutcomeSkipped:
		if o.Renamed() {
			return fmt.Sprintf("%s — would create as %q", prefix, o.FinalTitle)
		}
		return fmt.Sprintf("%s — would create", prefix)
	case domain.OutcomeFailed:
		return fmt.Sprintf("%s — failed at %s: %s", prefix, o.Stage, o.Reason)
	}
	return prefix
}

// ── Run summary ──────────────────────────────────────────────────

// LineSummary renders the end-of-run summary block.
func LineSummary(r *domain.RunReport) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("─", 52))
	b.WriteString("\n")

	recipes := english.Plural(len(r.Outcomes), "recipe", "")
	if r.DryRun {
		fmt.Fprintf(&b, "Dry run complete: %s examined in %s\n", recipes, formatElapsed(r.Elapsed))
	} else {
		fmt.Fprintf(&b, "Migration complete: %s processed in %s\n", recipes, formatElapsed(r.Elapsed))
	}

	c := r.Counts
	if c.Created > 0 {
		fmt.Fprintf(&b, "  ✓ %d created\n", c.Created)
	}
	if c.Renamed > 0 {
		fmt.Fprintf(&b, "  ↻ %d created with a renamed title\n", c.Renamed)
	}
	if c.Skipped > 0 {
		fmt.Fprintf(&b, "  ⊘ %d skipped (dry run)\n", c.Skipped)
	}
	if c.Failed > 0 {
		fmt.Fprintf(&b, "  ✗ %d failed\n", c.Failed)
	}
	if c.ImagesUploaded > 0 || c.ImagesFailed > 0 {
		fmt.Fprintf(&b, "  ▣ images: %d uploaded, %d failed\n", c.ImagesUploaded, c.ImagesFailed)
	}

	for _, o := range r.Outcomes {
		if o.Status == domain.OutcomeFailed {
			fmt.Fprintf(&b, "    ✗ %s — %s: %s\n", o.Title, o.Stage, o.Reason)
		} else if o.Image == domain.ImageFailed {
			fmt.Fprintf(&b, "    ⚠ %s — image upload failed: %s\n", o.FinalTitle, o.ImageNote)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// LineFindThem tells the user where the imported recipes live. Empty when
// there is no live target to link to.
func LineFindThem(targetURL string, dryRun bool) string {
	if dryRun || targetURL == "" {
		return ""
	}
	return fmt.Sprintf("All imported recipes are tagged %q — browse them at %s/g/home?tag=%s",
		mapper.ImportTag, strings.TrimRight(targetURL, "/"), mapper.ImportTag)
}

// formatElapsed keeps run durations readable: sub-second runs keep their
// precision, anything longer rounds to tenths.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
