// Command udctl is the maintenance CLI for userdesk.
//
// Usage:
//
//	udctl                   Show help
//	udctl history           Mutation journal (most recent first)
//	udctl history -user ID  Journal entries for one user
//	udctl events            JSONL event log viewer
//	udctl config            Print the effective configuration
//	udctl config -init      Write the defaults to the config file
package main

import (
	"fmt"
	"os"
)

const usage = `udctl - userdesk maintenance CLI

Usage:
  udctl <command> [flags]

Commands:
  history     Mutation journal recorded by the console
  events      JSONL event log viewer
  config      Print or initialise the configuration

Environment:
  USERDESK_API_BASE_URL       Users API address (default: http://localhost:8090)
  USERDESK_JOURNAL_PATH       Journal database (default: ~/.userdesk/journal.db)
  USERDESK_LOG_LEVEL          debug, info, warn or error

Run 'udctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "history":
		runHistory()
	case "events":
		runEvents()
	case "config":
		runConfig()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "udctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
