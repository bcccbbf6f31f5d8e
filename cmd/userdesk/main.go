// Command userdesk is the terminal console for browsing and maintaining the
// user directory served by the users API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/userdesk/internal/config"
	"github.com/abelbrown/userdesk/internal/journal"
	"github.com/abelbrown/userdesk/internal/listing"
	"github.com/abelbrown/userdesk/internal/logging"
	"github.com/abelbrown/userdesk/internal/otel"
	"github.com/abelbrown/userdesk/internal/remote"
	"github.com/abelbrown/userdesk/internal/remote/remotetest"
	"github.com/abelbrown/userdesk/internal/ui"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Path to config.json")
	demo := flag.Int("demo", 0, "Serve N generated users in-process instead of calling the API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	if err := logging.Init(dataDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Event log + ring for the debug overlay
	var events *otel.Logger
	eventsFile, err := os.OpenFile(filepath.Join(dataDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Event log unavailable", "error", err)
		events = otel.NewNullLogger()
	} else {
		defer eventsFile.Close()
		events = otel.NewLogger(eventsFile)
	}
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)
	defer events.Close()

	events.Info(otel.KindStartup, "main", "userdesk starting")
	defer events.Info(otel.KindShutdown, "main", "userdesk exiting")

	baseURL := cfg.API.BaseURL
	if *demo > 0 {
		srv := remotetest.Start(remotetest.Seed(*demo, time.Now().Add(-time.Duration(*demo)*time.Hour))...)
		defer srv.Close()
		baseURL = srv.URL()
		logging.Info("Demo server started", "url", baseURL, "users", *demo)
	}

	client, err := remote.New(baseURL,
		remote.WithTimeout(cfg.Timeout()),
		remote.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
	)
	if err != nil {
		fatal("Invalid API address: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := listing.Options{
		Debounce: cfg.Debounce(),
		PageSize: cfg.List.PageSize,
		Context:  ctx,
		Events:   events,
	}
	if cfg.Journal.Enabled {
		path := cfg.JournalPath(dataDir)
		j, err := journal.Open(path)
		if err != nil {
			logging.Warn("Mutation journal unavailable", "path", path, "error", err)
		} else {
			defer j.Close()
			opts.Journal = j
			logging.Info("Journal opened", "path", path)
		}
	}

	ctrl := listing.New(client, opts)
	app := ui.NewApp(ctrl, ui.Options{
		PageSizes: cfg.List.PageSizeOptions,
		Events:    events,
		Ring:      ring,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	logging.Info("Starting UI", "api", baseURL)
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		fatal("Error: %v", err)
	}
	logging.Info("userdesk exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
