package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/export"
	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/scan"
)

func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config file"
	}
	return config.Path(home)
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, roots, DB and FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("=== Config ===")
			path := configPath()
			if _, err := os.Stat(path); err != nil {
				fmt.Printf("  File: %s (NOT FOUND, using defaults)\n", path)
			} else {
				fmt.Printf("  File: %s (OK)\n", path)
			}
			fmt.Printf("  Output dir: %s\n", cfg.OutputDir)
			fmt.Printf("  Log: level=%s format=%s\n", cfg.Log.Level, cfg.Log.Format)

			fmt.Println("\n=== Export formats ===")
			for _, name := range export.Names() {
				status := "enabled"
				if !cfg.ExportEnabled(name) {
					status = "disabled"
				}
				fmt.Printf("  %s: %s\n", name, status)
			}

			fmt.Println("\n=== Roots ===")
			if len(cfg.Roots) == 0 {
				fmt.Println("  (none configured)")
			}
			for _, root := range cfg.Roots {
				if !checkDir(root) {
					continue
				}
				files, err := scan.ScanRoot(root)
				if err != nil {
					fmt.Printf("    scan error: %v\n", err)
					continue
				}
				fmt.Printf("    export files: %d\n", len(files))
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'chatx index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			chatCount, err := db.ChatCount()
			if err != nil {
				return fmt.Errorf("count chats: %w", err)
			}

			msgCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Chats:    %d\n", chatCount)
			fmt.Printf("  Messages: %d\n", msgCount)

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == msgCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", msgCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(path string) bool {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Printf("  %s (NOT FOUND)\n", path)
		return false
	case !info.IsDir():
		fmt.Printf("  %s (NOT A DIRECTORY)\n", path)
		return false
	default:
		fmt.Printf("  %s (OK)\n", path)
		return true
	}
}
