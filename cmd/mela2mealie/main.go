// mela2mealie — migrate a Mela recipe export into a Mealie server.
//
// Usage:
//
//	mela2mealie [flags] <export.melarecipes>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/mela2mealie/internal/display"
	"github.com/hammamikhairi/mela2mealie/internal/domain"
	"github.com/hammamikhairi/mela2mealie/internal/engine"
	"github.com/hammamikhairi/mela2mealie/internal/logger"
	"github.com/hammamikhairi/mela2mealie/internal/mealie"
	"github.com/hammamikhairi/mela2mealie/internal/mela"
	"github.com/hammamikhairi/mela2mealie/internal/report"
	"github.com/hammamikhairi/mela2mealie/internal/state"
	"github.com/hammamikhairi/mela2mealie/internal/watchdog"
)

func main() {
	_ = godotenv.Load()

	urlFlag := flag.String("url", "", "Mealie base URL (or "+mealie.EnvURL+")")
	tokenFlag := flag.String("token", "", "Mealie API token (or "+mealie.EnvToken+")")
	configFlag := flag.String("config", "config.json", "path to a JSON config file")
	dryRun := flag.Bool("dry-run", false, "walk the export and report without writing to the server")
	skipImages := flag.Bool("skip-images", false, "do not upload recipe images")
	reportPath := flag.String("report", "", "write a JSON manifest of the run to this file")
	pause := flag.Duration("pause", 300*time.Millisecond, "idle delay between recipes")
	renameCap := flag.Int("rename-cap", 5, "how many numeric suffixes to try for a duplicate title")
	noUI := flag.Bool("no-ui", false, "plain output without the progress display")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".mela2mealie-logs/migrate.log", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <export.melarecipes>\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	exportPath := flag.Arg(0)

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the progress display stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package to the same output so third-party
	// libs don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Resolve connection settings: flags beat env vars beat the config file.
	cfg, err := mealie.LoadConfigFile(*configFlag)
	if err != nil {
		log.Warn("config file: %v", err)
	}
	baseURL := firstNonEmpty(*urlFlag, os.Getenv(mealie.EnvURL), cfg.URL)
	token := firstNonEmpty(*tokenFlag, os.Getenv(mealie.EnvToken), cfg.Token)

	if !*dryRun && (baseURL == "" || token == "") {
		fmt.Fprintln(os.Stderr, "error: a live run needs -url and -token (or "+mealie.EnvURL+" / "+mealie.EnvToken+"); use -dry-run to preview without a server")
		os.Exit(2)
	}

	// Set up context — cancelled when the UI quits or on SIGINT/SIGTERM,
	// so a ctrl-c finishes the current recipe and still prints the report.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Wire dependencies.
	source, err := mela.Open(exportPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer source.Close()

	store := state.NewMemoryStore(log)
	ui := display.NewUI(store)

	var target domain.RecipeTarget
	if !*dryRun {
		target = mealie.NewClient(baseURL, token, log)
	}

	console := report.NewConsoleReporter(log, ui.Printf, report.WithTargetURL(baseURL))
	var reporter domain.Reporter = console
	if *reportPath != "" {
		reporter = report.NewMulti(console, report.NewJSONReporter(*reportPath, log))
	}

	eng := engine.New(source, target, store, reporter, log,
		engine.WithDryRun(*dryRun),
		engine.WithSkipImages(*skipImages),
		engine.WithRecipePause(*pause),
		engine.WithRenameCap(*renameCap),
	)

	// Start the background stall watchdog.
	dog := watchdog.New(store, report.NewConsoleNotifier(log, ui.Printf), log)
	dog.Start(ctx)
	defer dog.Stop()

	fmt.Println(display.RenderBanner())
	if *dryRun {
		fmt.Println(display.BannerStyle.Render("  Dry run — nothing will be written to the server."))
		fmt.Println()
	}

	var runErr error
	if *noUI {
		_, runErr = eng.Run(ctx)
	} else {
		// Run the migration in a background goroutine; Bubble Tea owns
		// the terminal and blocks until the run quits it.
		done := make(chan struct{})
		go func() {
			defer close(done)
			ui.WaitReady()
			_, runErr = eng.Run(ctx)
			ui.Quit()
		}()
		if err := ui.Run(); err != nil {
			log.Error("display: %v", err)
		}
		// If the user quit the display mid-run, stop the engine at the
		// next recipe boundary and let it finish its report first.
		cancel()
		<-done
	}
	cancel()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
