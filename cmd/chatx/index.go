package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [paths...]",
		Short: "Parse chat exports into the local search index",
		Long: `Each path may be an export file, a directory (searched for *.txt) or a glob.
With no paths, the roots from the config file are indexed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = cfg.Roots
			}
			if len(paths) == 0 {
				return fmt.Errorf("no paths given and no roots configured in %s", configPath())
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Indexing into %s...\n", cfg.DBPath)
			for _, p := range paths {
				fmt.Fprintf(os.Stderr, "  %s\n", p)
			}

			stats, err := index.IndexFiles(db, paths)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
