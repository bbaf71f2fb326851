package report

import (
	"context"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// Compile-time interface check.
var _ domain.Reporter = (*Nop)(nil)

// Nop discards everything. Used in quiet mode and as a stand-in for tests.
type Nop struct{}

// NewNop creates a reporter that reports nothing.
func NewNop() *Nop {
	return &Nop{}
}

func (*Nop) RecipeFinished(ctx context.Context, o *domain.RecipeOutcome) error { return nil }

func (*Nop) RunFinished(ctx context.Context, rep *domain.RunReport) error { return nil }
