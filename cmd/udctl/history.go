package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/abelbrown/userdesk/internal/config"
	"github.com/abelbrown/userdesk/internal/journal"
)

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", config.ConfigPath(), "Path to config.json")
	limit := fs.Int("n", 50, "Number of entries to show")
	userID := fs.String("user", "", "Only entries for this user id")
	failed := fs.Bool("failed", false, "Only failed mutations")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*configPath)
	j := openJournal(cfg)
	defer j.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var entries []journal.Entry
	var err error
	if *userID != "" {
		entries, err = j.ForUser(ctx, *userID, *limit)
	} else {
		entries, err = j.Recent(ctx, *limit)
	}
	if err != nil {
		log.Fatalf("failed to read journal: %v", err)
	}

	printHistory(os.Stdout, entries, *failed)
}

// printHistory writes one line per entry, newest first.
func printHistory(w io.Writer, entries []journal.Entry, failedOnly bool) {
	shown := 0
	for _, e := range entries {
		if failedOnly && e.OK() {
			continue
		}
		status := "ok"
		if !e.OK() {
			status = "FAILED"
		}
		line := fmt.Sprintf("%s  %-13s %-6s  %s", e.Time.Local().Format("2006-01-02 15:04:05"), e.Op, status, e.UserID)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		if e.Err != "" {
			line += "  err=" + e.Err
		}
		fmt.Fprintln(w, line)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "No journal entries.")
	}
}
