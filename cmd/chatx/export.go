package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/export"
)

func exportCmd() *cobra.Command {
	var formats []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the parsed messages as JSON, CSV or YAML",
		Long: `Writes <out>/<base>.<ext> for every requested format, where <base> is the
export file name without its extension. Formats not enabled in the config are
reported and skipped; the others are still written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := loadChat(args[0])
			if err != nil {
				return err
			}
			if len(chat.Messages) == 0 {
				return noMessages()
			}

			if len(formats) == 0 {
				formats = cfg.Export.Formats
			}
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			base := strings.TrimSuffix(filepath.Base(chat.Path), filepath.Ext(chat.Path))

			for _, name := range formats {
				e, err := export.Lookup(strings.ToLower(strings.TrimSpace(name)), cfg.ExportEnabled)
				if err != nil {
					return err
				}

				path := filepath.Join(outDir, base+"."+e.Ext())
				err = export.WriteFile(cmd.Context(), e, chat.Messages, path)
				if errors.Is(err, export.ErrUnavailable) {
					slog.Warn("export skipped", "format", e.Name(), "error", err)
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Printf("Exported %d messages to %s\n", len(chat.Messages), path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", nil, "Formats to write (json,csv,yaml); default from config")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory; default from config")

	return cmd
}
