package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/stats"
)

func statsCmd() *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Show message counts per sender and the date range of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := loadChat(args[0])
			if err != nil {
				return err
			}

			msgs := chat.Messages
			if sender != "" {
				msgs = stats.BySender(msgs, sender)
			}
			if len(msgs) == 0 {
				return noMessages()
			}

			return stats.Compute(msgs).WriteText(os.Stdout)
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Only count messages from this sender")

	return cmd
}
