package mealie

import (
	"context"
	"net/http"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// organizerCreate is the create payload for both organizer kinds.
type organizerCreate struct {
	Name string `json:"name"`
}

// organizerPath maps a kind to its API path segment.
func organizerPath(kind domain.OrganizerKind) string {
	if kind == domain.KindTag {
		return "tags"
	}
	return "categories"
}

// OrganizerBySlug fetches an existing category or tag by its slug.
// Returns domain.ErrNotFound when no organizer has that slug.
func (c *Client) OrganizerBySlug(ctx context.Context, kind domain.OrganizerKind, slug string) (*domain.OrganizerRef, error) {
	var ref domain.OrganizerRef
	err := c.do(ctx, http.MethodGet, "/api/organizers/"+organizerPath(kind)+"/slug/"+slug, nil, &ref)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CreateOrganizer creates a category or tag and returns the ref the
// server assigned. Returns domain.ErrAlreadyExists when the name is
// already taken.
func (c *Client) CreateOrganizer(ctx context.Context, kind domain.OrganizerKind, name string) (*domain.OrganizerRef, error) {
	var ref domain.OrganizerRef
	err := c.do(ctx, http.MethodPost, "/api/organizers/"+organizerPath(kind), organizerCreate{Name: name}, &ref)
	if err != nil {
		return nil, err
	}
	c.log.Debug("mealie: created %s %q (slug %s)", kind, ref.Name, ref.Slug)
	return &ref, nil
}
