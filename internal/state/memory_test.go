package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	run := &domain.Run{
		ID:        "run-1",
		Source:    "export.melarecipes",
		Phase:     domain.PhaseSyncing,
		Total:     10,
		Position:  3,
		Current:   "Pasta",
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != run.ID || loaded.Position != 3 {
		t.Fatalf("loaded run does not match: %+v", loaded)
	}

	if _, err := store.Load(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreSnapshots(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	outcome := &domain.RecipeOutcome{Index: 1, Title: "Pasta", Status: domain.OutcomeCreated}
	run := &domain.Run{ID: "run-1", Phase: domain.PhaseSyncing, Outcomes: []*domain.RecipeOutcome{outcome}}

	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutations after Save must not leak into the stored copy.
	run.Position = 99
	outcome.Status = domain.OutcomeFailed

	loaded, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Position == 99 {
		t.Error("stored run shares state with the caller")
	}
	if loaded.Outcomes[0].Status != domain.OutcomeCreated {
		t.Error("stored outcomes share state with the caller")
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	runs := []*domain.Run{
		{ID: "r1", Phase: domain.PhaseDecoding},
		{ID: "r2", Phase: domain.PhaseSyncing},
		{ID: "r3", Phase: domain.PhaseUploading},
		{ID: "r4", Phase: domain.PhaseReporting},
	}
	for _, r := range runs {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active runs, got %d", len(active))
	}
	for _, r := range active {
		if r.Phase == domain.PhaseReporting {
			t.Errorf("run %s is finished but listed as active", r.ID)
		}
	}
}
