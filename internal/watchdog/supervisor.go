// Package watchdog implements the background supervisor that monitors
// active migration runs and warns the user when a run stops making
// progress, which usually means the target server has gone quiet.
package watchdog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor polls run state.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithStallThreshold sets how long a run may sit on one recipe before it
// counts as stalled.
func WithStallThreshold(d time.Duration) Option {
	return func(s *Supervisor) {
		s.stallThreshold = d
	}
}

// WithNotifyCooldown sets the minimum time between repeated stall warnings
// for the same run.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.notifyCooldown = d
	}
}

// WithMaxWarnings sets how many stall warnings a run gets before the
// supervisor stops nagging.
func WithMaxWarnings(n int) Option {
	return func(s *Supervisor) {
		s.maxWarnings = n
	}
}

// Supervisor runs in the background and watches active runs for stalls.
// A run is stalled when it sits in a network phase without its state
// changing for longer than the threshold; decode and report phases are
// local and never watched.
type Supervisor struct {
	store          domain.RunStore
	notifier       domain.Notifier
	log            *logger.Logger
	tickInterval   time.Duration
	stallThreshold time.Duration
	notifyCooldown time.Duration
	maxWarnings    int

	tracked map[string]*stallState // touched only by the loop goroutine

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// stallState remembers where a run was last seen, so progress resets the
// warning counter.
type stallState struct {
	phase    domain.Phase
	position int
	warnings int
	lastWarn time.Time
}

// New creates a watchdog supervisor with the given dependencies and options.
func New(store domain.RunStore, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:          store,
		notifier:       notifier,
		log:            log,
		tickInterval:   5 * time.Second,
		stallThreshold: 30 * time.Second,
		notifyCooldown: 30 * time.Second,
		maxWarnings:    3,
		tracked:        make(map[string]*stallState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background supervisor loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("watchdog already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)

	s.log.Info("watchdog started (tick=%s, stall threshold=%s)", s.tickInterval, s.stallThreshold)
}

// Stop gracefully shuts down the supervisor.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("watchdog stopped")
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle: poll active runs, warn on the stalled ones.
func (s *Supervisor) tick(ctx context.Context) {
	runs, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("watchdog: listing active runs: %v", err)
		return
	}

	seen := make(map[string]struct{}, len(runs))
	for _, run := range runs {
		seen[run.ID] = struct{}{}
		s.checkRun(ctx, run)
	}

	// Drop state for runs that finished or vanished.
	for id := range s.tracked {
		if _, ok := seen[id]; !ok {
			delete(s.tracked, id)
		}
	}
}

// checkRun warns when a single run has been sitting still for too long.
func (s *Supervisor) checkRun(ctx context.Context, run *domain.Run) {
	if run.Phase != domain.PhaseSyncing && run.Phase != domain.PhaseUploading {
		delete(s.tracked, run.ID)
		return
	}

	st := s.tracked[run.ID]
	if st == nil || st.phase != run.Phase || st.position != run.Position {
		// Progress since the last look; start the stall clock fresh.
		s.tracked[run.ID] = &stallState{phase: run.Phase, position: run.Position}
		return
	}

	idle := time.Since(run.UpdatedAt)
	if idle < s.stallThreshold {
		return
	}
	if st.warnings >= s.maxWarnings {
		return
	}
	if !st.lastWarn.IsZero() && time.Since(st.lastWarn) < s.notifyCooldown {
		return
	}

	msg := stallMessage(run, idle)
	s.log.Warn("watchdog: %s", msg)

	var err error
	if st.warnings == 0 {
		err = s.notifier.Notify(ctx, msg)
	} else {
		err = s.notifier.NotifyUrgent(ctx, msg)
	}
	if err != nil {
		s.log.Error("watchdog: delivering stall warning: %v", err)
	}

	st.warnings++
	st.lastWarn = time.Now()
}

// stallMessage describes what the run was doing when it went quiet.
func stallMessage(run *domain.Run, idle time.Duration) string {
	where := fmt.Sprintf("recipe %d/%d", run.Position, run.Total)
	if run.Current != "" {
		where = fmt.Sprintf("%q (%d/%d)", run.Current, run.Position, run.Total)
	}
	return fmt.Sprintf("run stalled: no progress for %s while %s on %s",
		idle.Round(time.Second), run.Phase, where)
}
