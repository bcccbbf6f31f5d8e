package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/userdesk/internal/config"
)

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", config.ConfigPath(), "Path to config.json")
	initFile := fs.Bool("init", false, "Write the default configuration to -config")
	force := fs.Bool("force", false, "Overwrite an existing file with -init")
	fs.Parse(os.Args[1:])

	if *initFile {
		if _, err := os.Stat(*configPath); err == nil && !*force {
			log.Fatalf("%s already exists (use -force to overwrite)", *configPath)
		}
		if err := config.DefaultConfig().Save(*configPath); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	cfg := loadConfig(*configPath)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode config: %v", err)
	}
	fmt.Printf("# %s (with USERDESK_* overrides)\n%s\n", *configPath, data)
}
