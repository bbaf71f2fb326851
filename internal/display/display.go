// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent migration status bar at the
// bottom of the terminal: current phase, a progress bar, and the
// recipe in flight. All application output is printed above the
// rendered area via Program.Println / Printf, ensuring concurrent
// writes never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	dryRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#bbf7d0"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	// ── Output styles (soft palette) ──

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Secondary text — dimmed zinc for hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors/alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call [UI.Println] and [UI.Printf] at any time after [UI.WaitReady]
// returns.
type UI struct {
	program *tea.Program
	readyCh chan struct{}
	quitCh  chan struct{}
	store   domain.RunStore
	done    atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(store domain.RunStore) *UI {
	return &UI{
		store:   store,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the status bar. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the status bar. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// ── Styled print helpers ─────────────────────────────────────────

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = phaseStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	m := model{
		store:   u.store,
		spin:    sp,
		bar:     bar,
		readyCh: u.readyCh,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	store   domain.RunStore
	spin    spinner.Model
	bar     progress.Model
	readyCh chan struct{}
	run     *runView
	width   int
}

// runView is the model's snapshot of the active run, refreshed on
// every poll tick.
type runView struct {
	phase    domain.Phase
	dryRun   bool
	position int
	total    int
	current  string
	counts   domain.Counts
}

// Messages.
type pollMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		pollCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func pollCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 30
		if w > 40 {
			w = 40
		}
		if w > 10 {
			m.bar.Width = w
		}
		return m, nil

	case pollMsg:
		m.refresh()
		cmds := []tea.Cmd{pollCmd()}
		if m.run != nil {
			cmds = append(cmds, tea.SetWindowTitle(m.titleStr()))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("mela2mealie"))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refresh pulls the latest run snapshot from the store. The engine
// runs one migration at a time, so the first active run is the run.
func (m *model) refresh() {
	runs, err := m.store.ListActive(context.Background())
	if err != nil || len(runs) == 0 {
		m.run = nil
		return
	}
	r := runs[0]
	m.run = &runView{
		phase:    r.Phase,
		dryRun:   r.DryRun,
		position: r.Position,
		total:    r.Total,
		current:  r.Current,
		counts:   domain.Tally(r.Outcomes),
	}
}

func (m model) titleStr() string {
	if m.run.total > 0 {
		return fmt.Sprintf("mela2mealie — %d/%d", m.run.position, m.run.total)
	}
	return "mela2mealie — " + m.run.phase.String()
}

func (m model) View() string {
	var b strings.Builder
	b.WriteByte('\n')
	b.WriteString(m.renderBar())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string

	if m.run == nil {
		parts = append(parts, m.spin.View()+labelStyle.Render("waiting for the run to start"))
	} else {
		label := m.run.phase.String()
		if m.run.dryRun {
			label += dryRunStyle.Render(" (dry run)")
		}
		parts = append(parts, m.spin.View()+phaseStyle.Render(label))

		if m.run.total > 0 && m.run.position > 0 {
			frac := float64(m.run.position) / float64(m.run.total)
			parts = append(parts, m.bar.ViewAs(frac))
			parts = append(parts, labelStyle.Render(fmt.Sprintf("%d/%d", m.run.position, m.run.total)))
		}
		if m.run.current != "" {
			parts = append(parts, currentStyle.Render(m.run.current))
		}
		if tally := m.renderCounts(); tally != "" {
			parts = append(parts, tally)
		}
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// renderCounts summarises outcomes so far. Empty until the first
// recipe lands.
func (m model) renderCounts() string {
	c := m.run.counts
	done := c.Created + c.Renamed + c.Failed + c.Skipped
	if done == 0 {
		return ""
	}
	var parts []string
	if ok := c.Created + c.Renamed + c.Skipped; ok > 0 {
		parts = append(parts, okStyle.Render(fmt.Sprintf("✓ %d", ok)))
	}
	if c.Failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("✗ %d", c.Failed)))
	}
	return strings.Join(parts, " ")
}
