package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/open"
)

func openCmd() *cobra.Command {
	var hit int
	var query string

	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open the export in $EDITOR at the line of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := loadChat(args[0])
			if err != nil {
				return err
			}

			line := 1
			if i := hitIndex(chat, hit, query); i >= 0 {
				line = chat.Messages[i].Line
			} else if hit >= 0 || query != "" {
				return fmt.Errorf("no matching message in %s", chat.Path)
			}
			return open.Message(chat.Path, line)
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message index to jump to")
	cmd.Flags().StringVar(&query, "query", "", "Jump to the first message containing this keyword")

	return cmd
}
