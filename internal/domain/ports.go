package domain

import "context"

// ExportSource yields recipes decoded from an export container. Walk is a
// single pass in entry order; every call re-reads the container. Implementations
// can be zip-backed, directory-backed, or in-memory for tests.
type ExportSource interface {
	Walk(ctx context.Context, fn func(*ExportRecipe) error) error
	// Image lazily decodes the recipe's embedded image. Returns (nil, nil)
	// when the recipe has none. Callers hold at most one blob at a time.
	Image(ctx context.Context, id string) (*ImageBlob, error)
	Close() error
}

// RecipeTarget is the mutating surface of the target API. Implementations
// can be REST-backed or in-memory for tests and simulations.
type RecipeTarget interface {
	Ping(ctx context.Context) error
	OrganizerBySlug(ctx context.Context, kind OrganizerKind, slug string) (*OrganizerRef, error)
	CreateOrganizer(ctx context.Context, kind OrganizerKind, name string) (*OrganizerRef, error)
	// CreateRecipe submits a name-only stub and returns the assigned slug.
	// Returns ErrAlreadyExists when the name is taken.
	CreateRecipe(ctx context.Context, name string) (string, error)
	UpdateRecipe(ctx context.Context, slug string, draft *RecipeDraft, categories, tags []OrganizerRef) error
	UploadImage(ctx context.Context, slug string, img *ImageBlob) error
}

// RunStore persists run state for observers. Implementations can be
// in-memory or file-backed.
type RunStore interface {
	Save(ctx context.Context, run *Run) error
	Load(ctx context.Context, id string) (*Run, error)
	ListActive(ctx context.Context) ([]*Run, error)
}

// Reporter receives migration results as they happen. Implementations can
// print to a terminal, write a manifest file, or fan out to several.
type Reporter interface {
	RecipeFinished(ctx context.Context, outcome *RecipeOutcome) error
	RunFinished(ctx context.Context, report *RunReport) error
}

// Notifier delivers out-of-band warnings to the user, e.g. stall alerts
// from the watchdog.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
