package report

import (
	"context"
	"errors"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// Compile-time interface check.
var _ domain.Reporter = (*Multi)(nil)

// Multi fans every event out to several reporters, e.g. the console plus
// a JSON manifest. Errors are joined so one sink cannot hide another's
// failure.
type Multi struct {
	reporters []domain.Reporter
}

// NewMulti creates a fan-out reporter.
func NewMulti(reporters ...domain.Reporter) *Multi {
	return &Multi{reporters: reporters}
}

func (m *Multi) RecipeFinished(ctx context.Context, o *domain.RecipeOutcome) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.RecipeFinished(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) RunFinished(ctx context.Context, rep *domain.RunReport) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.RunFinished(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
