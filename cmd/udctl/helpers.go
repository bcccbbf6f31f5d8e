package main

import (
	"log"
	"path/filepath"

	"github.com/abelbrown/userdesk/internal/config"
	"github.com/abelbrown/userdesk/internal/journal"
)

// loadConfig loads the config file from path or fatals.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// openJournal opens the journal named by cfg or fatals.
func openJournal(cfg *config.Config) *journal.Journal {
	j, err := journal.Open(cfg.JournalPath(config.DataDir()))
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	return j
}

// eventLogPath returns the path to events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.DataDir(), "events.jsonl")
}
