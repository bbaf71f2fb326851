package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/slug"
)

// organizerTable holds the per-kind name to ref mappings for one run.
// Names that could not be resolved are simply absent; recipes referencing
// them fail individually at patch time.
type organizerTable struct {
	categories map[string]domain.OrganizerRef
	tags       map[string]domain.OrganizerRef
}

func newOrganizerTable() *organizerTable {
	return &organizerTable{
		categories: make(map[string]domain.OrganizerRef),
		tags:       make(map[string]domain.OrganizerRef),
	}
}

func (t *organizerTable) put(kind domain.OrganizerKind, name string, ref domain.OrganizerRef) {
	if kind == domain.KindTag {
		t.tags[name] = ref
	} else {
		t.categories[name] = ref
	}
}

// refs maps names to resolved refs, returning the names that have no
// entry separately.
func (t *organizerTable) refs(kind domain.OrganizerKind, names []string) ([]domain.OrganizerRef, []string) {
	table := t.categories
	if kind == domain.KindTag {
		table = t.tags
	}
	var refs []domain.OrganizerRef
	var missing []string
	for _, name := range names {
		ref, ok := table[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, missing
}

// resolveOrganizers ensures every category and tag name referenced in the
// batch is known on the target, creating the missing ones. Names are
// processed in sorted order so two runs over the same export issue the
// same calls. Rejected credentials and an unreachable target abort the
// run; any other per-name failure is recorded and skipped.
func (e *Engine) resolveOrganizers(ctx context.Context, batch []*batchItem) (*organizerTable, error) {
	categories, tags := collectNames(batch)
	table := newOrganizerTable()

	if e.dryRun {
		for _, name := range categories {
			table.put(domain.KindCategory, name, placeholderRef(name))
		}
		for _, name := range tags {
			table.put(domain.KindTag, name, placeholderRef(name))
		}
		e.log.Info("dry run: resolved %d categories and %d tags locally", len(categories), len(tags))
		return table, nil
	}

	if err := e.target.Ping(ctx); err != nil {
		return nil, fmt.Errorf("target preflight: %w", err)
	}

	resolved := 0
	for _, name := range categories {
		ref, err := e.fetchOrCreate(ctx, domain.KindCategory, name)
		if err != nil {
			if fatalResolution(err) {
				return nil, fmt.Errorf("resolving category %q: %w", name, err)
			}
			e.log.Warn("category %q could not be resolved, dependent recipes will fail: %v", name, err)
			continue
		}
		table.put(domain.KindCategory, name, ref)
		resolved++
	}
	for _, name := range tags {
		ref, err := e.fetchOrCreate(ctx, domain.KindTag, name)
		if err != nil {
			if fatalResolution(err) {
				return nil, fmt.Errorf("resolving tag %q: %w", name, err)
			}
			e.log.Warn("tag %q could not be resolved, dependent recipes will fail: %v", name, err)
			continue
		}
		table.put(domain.KindTag, name, ref)
		resolved++
	}

	e.log.Info("organizers ready: %d/%d resolved", resolved, len(categories)+len(tags))
	return table, nil
}

// fetchOrCreate looks an organizer up by slug first and creates it only
// on a miss, so re-running a migration never duplicates organizers. A
// create that loses a race to a concurrent writer falls back to a second
// fetch.
func (e *Engine) fetchOrCreate(ctx context.Context, kind domain.OrganizerKind, name string) (domain.OrganizerRef, error) {
	s := slug.Make(name)
	ref, err := e.target.OrganizerBySlug(ctx, kind, s)
	if err == nil {
		return *ref, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.OrganizerRef{}, err
	}

	created, err := e.target.CreateOrganizer(ctx, kind, name)
	if err == nil {
		e.log.Debug("created %s %q", kind, name)
		return *created, nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		if again, retryErr := e.target.OrganizerBySlug(ctx, kind, s); retryErr == nil {
			return *again, nil
		}
	}
	return domain.OrganizerRef{}, err
}

// fatalResolution reports whether a resolution error should abort the
// whole run: bad credentials, or a target that stopped responding.
func fatalResolution(err error) bool {
	if errors.Is(err, domain.ErrUnauthorized) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// collectNames gathers the distinct category and tag names across the
// batch, sorted for deterministic resolution order.
func collectNames(batch []*batchItem) (categories, tags []string) {
	catSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})
	for _, item := range batch {
		for _, c := range item.draft.Categories {
			catSet[c] = struct{}{}
		}
		for _, t := range item.draft.Tags {
			tagSet[t] = struct{}{}
		}
	}
	for c := range catSet {
		categories = append(categories, c)
	}
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(categories)
	sort.Strings(tags)
	return categories, tags
}

// placeholderRef synthesizes a local ref for dry runs, where no server
// assigns real ids.
func placeholderRef(name string) domain.OrganizerRef {
	return domain.OrganizerRef{
		ID:   "dry-" + slug.Make(name),
		Name: name,
		Slug: slug.Make(name),
	}
}
