package report

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Reporter = (*ConsoleReporter)(nil)
	_ domain.Notifier = (*ConsoleNotifier)(nil)
)

// ANSI escape codes for terminal formatting.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// ConsoleOption configures the ConsoleReporter.
type ConsoleOption func(*ConsoleReporter)

// WithTargetURL lets the final summary link to the imported recipes.
func WithTargetURL(url string) ConsoleOption {
	return func(r *ConsoleReporter) { r.targetURL = url }
}

// ConsoleReporter prints per-recipe progress lines and the final summary
// with ANSI formatting.
type ConsoleReporter struct {
	log       *logger.Logger
	printFn   PrintFunc
	targetURL string
}

// NewConsoleReporter creates a stdout-based reporter.
// If printFn is nil, fmt.Printf is used.
func NewConsoleReporter(log *logger.Logger, printFn PrintFunc, opts ...ConsoleOption) *ConsoleReporter {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	r := &ConsoleReporter{log: log, printFn: printFn}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RecipeFinished prints the outcome line, colored by status.
func (r *ConsoleReporter) RecipeFinished(ctx context.Context, o *domain.RecipeOutcome) error {
	line := LineOutcome(o)
	switch o.Status {
	case domain.OutcomeCreated:
		r.printFn("%s%s%s", green, line, reset)
	case domain.OutcomeRenamed:
		r.printFn("%s%s%s", yellow, line, reset)
	case domain.OutcomeFailed:
		r.printFn("%s%s%s", red, line, reset)
	default:
		r.printFn("%s%s%s", dim, line, reset)
	}
	return nil
}

// RunFinished prints the summary block and, for live runs, where to find
// the imported recipes.
func (r *ConsoleReporter) RunFinished(ctx context.Context, rep *domain.RunReport) error {
	r.printFn("%s", LineSummary(rep))
	if hint := LineFindThem(r.targetURL, rep.DryRun); hint != "" {
		r.printFn("%s%s%s", cyan, hint, reset)
	}
	return nil
}

// ConsoleNotifier writes watchdog notifications to stdout with ANSI
// formatting.
type ConsoleNotifier struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewConsoleNotifier creates a stdout-based notifier.
// If printFn is nil, fmt.Printf is used.
func NewConsoleNotifier(log *logger.Logger, printFn PrintFunc) *ConsoleNotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &ConsoleNotifier{log: log, printFn: printFn}
}

// Notify prints a normal notification.
func (n *ConsoleNotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *ConsoleNotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}
