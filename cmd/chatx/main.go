package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/config"
	"github.com/Zuo-Peng/chatx/internal/logging"
	"github.com/Zuo-Peng/chatx/internal/parse"
)

var version = "dev"

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	rootCmd := &cobra.Command{
		Use:           "chatx",
		Short:         "Chat export extractor - parse, search and export plain-text chat logs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		},
	}

	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadChat parses the export at path, reporting a missing file before any
// parsing happens.
func loadChat(path string) (*parse.Chat, error) {
	chat, err := parse.ParseFile(path)
	if errors.Is(err, parse.ErrNotFound) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return chat, err
}

// noMessages reports an export in which no format was recognized and
// returns the exit status for it.
func noMessages() error {
	fmt.Println("No messages found! Please check if the file format is correct.")
	return exitError{code: 1}
}

// hitIndex resolves --hit (a 0-based message index) falling back to the
// first message matching query. It returns -1 when nothing is selected.
func hitIndex(chat *parse.Chat, hit int, query string) int {
	if hit >= 0 && hit < len(chat.Messages) {
		return hit
	}
	if query != "" {
		return chat.Find(query)
	}
	return -1
}
