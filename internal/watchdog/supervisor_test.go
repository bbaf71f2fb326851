package watchdog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
	"github.com/hammamikhairi/mela2mealie/internal/state"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) counts() (normal, urgent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages), len(m.urgent)
}

func stalledRun(id string, phase domain.Phase) *domain.Run {
	return &domain.Run{
		ID:        id,
		Source:    "export.melarecipes",
		Phase:     phase,
		Total:     10,
		Position:  4,
		Current:   "Beef Stew",
		StartedAt: time.Now().Add(-5 * time.Minute),
		UpdatedAt: time.Now().Add(-1 * time.Minute), // Long past any threshold.
	}
}

func TestWatchdogWarnsOnStalledRun(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := state.NewMemoryStore(log)
	notifier := &mockNotifier{}
	ctx := context.Background()

	if err := store.Save(ctx, stalledRun("stall-test", domain.PhaseSyncing)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup := New(store, notifier, log,
		WithTickInterval(20*time.Millisecond),
		WithStallThreshold(50*time.Millisecond),
		WithNotifyCooldown(40*time.Millisecond),
	)
	sup.Start(ctx)
	defer sup.Stop()

	time.Sleep(300 * time.Millisecond)

	normal, urgent := notifier.counts()
	if normal == 0 {
		t.Fatal("expected a stall warning for the quiet run")
	}
	if urgent == 0 {
		t.Fatal("expected repeated stalls to escalate to an urgent warning")
	}
}

func TestWatchdogRespectsMaxWarnings(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := state.NewMemoryStore(log)
	notifier := &mockNotifier{}
	ctx := context.Background()

	if err := store.Save(ctx, stalledRun("cap-test", domain.PhaseUploading)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup := New(store, notifier, log,
		WithTickInterval(10*time.Millisecond),
		WithStallThreshold(20*time.Millisecond),
		WithNotifyCooldown(10*time.Millisecond),
		WithMaxWarnings(2),
	)
	sup.Start(ctx)
	defer sup.Stop()

	time.Sleep(300 * time.Millisecond)

	normal, urgent := notifier.counts()
	if total := normal + urgent; total != 2 {
		t.Fatalf("expected exactly 2 warnings, got %d", total)
	}
}

func TestWatchdogIgnoresHealthyRun(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := state.NewMemoryStore(log)
	notifier := &mockNotifier{}
	ctx := context.Background()

	run := stalledRun("healthy-test", domain.PhaseSyncing)
	run.UpdatedAt = time.Now()
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup := New(store, notifier, log,
		WithTickInterval(20*time.Millisecond),
		WithStallThreshold(10*time.Second),
	)
	sup.Start(ctx)
	defer sup.Stop()

	time.Sleep(150 * time.Millisecond)

	if normal, urgent := notifier.counts(); normal+urgent > 0 {
		t.Fatalf("expected no warnings for a fresh run, got %d", normal+urgent)
	}
}

func TestWatchdogIgnoresLocalPhases(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := state.NewMemoryStore(log)
	notifier := &mockNotifier{}
	ctx := context.Background()

	// Decoding is pure local work; a long pause there is not a stall.
	if err := store.Save(ctx, stalledRun("decode-test", domain.PhaseDecoding)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup := New(store, notifier, log,
		WithTickInterval(20*time.Millisecond),
		WithStallThreshold(30*time.Millisecond),
	)
	sup.Start(ctx)
	defer sup.Stop()

	time.Sleep(150 * time.Millisecond)

	if normal, urgent := notifier.counts(); normal+urgent > 0 {
		t.Fatalf("expected no warnings outside network phases, got %d", normal+urgent)
	}
}

func TestWatchdogResetsOnProgress(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := state.NewMemoryStore(log)
	notifier := &mockNotifier{}
	ctx := context.Background()

	run := stalledRun("progress-test", domain.PhaseSyncing)
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Drive ticks by hand so the sequence is deterministic.
	sup := New(store, notifier, log, WithNotifyCooldown(0))

	sup.tick(ctx) // first sight, records position
	sup.tick(ctx) // same position, ancient UpdatedAt: first warning
	if normal, urgent := notifier.counts(); normal != 1 || urgent != 0 {
		t.Fatalf("expected one normal warning, got normal=%d urgent=%d", normal, urgent)
	}

	// The run advances, then stalls again at the new position. The
	// escalation level must start over: a normal warning, not urgent.
	run.Position = 5
	run.Current = "Garlic Bread"
	run.UpdatedAt = time.Now().Add(-1 * time.Minute)
	if err := store.Save(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	sup.tick(ctx) // progress seen, counter reset, no warning
	sup.tick(ctx) // stalled at the new position: normal warning again
	if normal, urgent := notifier.counts(); normal != 2 || urgent != 0 {
		t.Fatalf("expected reset to a normal warning, got normal=%d urgent=%d", normal, urgent)
	}
}
