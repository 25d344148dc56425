package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/render"
)

func previewCmd() *cobra.Command {
	var hit int
	var context int
	var query string
	var width int

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Preview a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := loadChat(args[0])
			if err != nil {
				return err
			}

			if len(chat.Messages) == 0 {
				return noMessages()
			}

			out, _ := render.Conversation(chat.Messages, render.Options{
				Hit:     hitIndex(chat, hit, query),
				Context: context,
				Width:   width,
				Query:   query,
				Title:   chat.Path,
			})
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message index to highlight (default: first match of --query)")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Keyword to highlight")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")

	return cmd
}
