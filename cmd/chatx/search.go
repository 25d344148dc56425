package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/tui"
)

func searchCmd() *cobra.Command {
	var caseSensitive bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <file> <keyword>",
		Short: "Search the messages of an export for a keyword",
		Long: `Opens an interactive browser when stdout is a terminal. Otherwise the first
--limit matches are printed with the first 200 characters of each.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := loadChat(args[0])
			if err != nil {
				return err
			}
			if len(chat.Messages) == 0 {
				return noMessages()
			}
			keyword := args[1]

			// Interactive TUI when stdout is a terminal; plain output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(chat, keyword, caseSensitive, os.Stdout)
			}

			results := search.Messages(chat.Messages, keyword, caseSensitive)
			fmt.Printf("Found %d messages containing '%s':\n", len(results), keyword)
			fmt.Println(strings.Repeat("-", 60))
			for i, m := range results {
				if i >= limit {
					break
				}
				fmt.Printf("\n%d. [%s] %s:\n", i+1, m.RawTimestamp, m.Sender)
				fmt.Printf("   %s\n", search.Truncate(m.Body, 200))
			}
			if len(results) > limit {
				fmt.Printf("\n... and %d more results\n", len(results)-limit)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match keyword case exactly")
	cmd.Flags().IntVar(&limit, "limit", 10, "Max results to print")

	return cmd
}
