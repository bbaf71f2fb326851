package domain

// OrganizerKind separates the two organizer namespaces on the target.
// Categories and tags may share names without colliding.
type OrganizerKind int

const (
	KindCategory OrganizerKind = iota
	KindTag
)

// String returns a human-readable organizer kind.
func (k OrganizerKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// OrganizerRef is the only shape a category or tag may take inside a recipe
// patch. Resolved once per distinct name per run, never cached across runs.
type OrganizerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// RecipeHandle identifies a recipe created on the target this run. Kept by
// the orchestrator between the sync and image phases.
type RecipeHandle struct {
	RecipeID string // export-side identity, keys the image accessor
	Slug     string
	Title    string
}
