// Package export writes parsed chat messages to flat files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// ErrUnavailable is returned when an export format is not enabled.
var ErrUnavailable = errors.New("export format unavailable")

// Exporter renders messages in a specific file format.
type Exporter interface {
	// Export writes msgs to w.
	Export(ctx context.Context, msgs []parse.Message, w io.Writer) error

	// Name returns the format name (json, csv, yaml).
	Name() string

	// Ext returns the file extension without the dot.
	Ext() string
}

// Fields is the column order shared by every format.
var Fields = []string{"timestamp", "timestamp_str", "sender", "message"}

var registry = map[string]Exporter{
	"json": JSON{},
	"csv":  CSV{},
	"yaml": YAML{},
}

// Names returns the known format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the exporter for name. When enabled reports the capability as
// switched off, an Unavailable exporter is returned instead. JSON is always
// available.
func Lookup(name string, enabled func(string) bool) (Exporter, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q", name)
	}
	if name != "json" && enabled != nil && !enabled(name) {
		return Unavailable{Format: name, Reason: fmt.Sprintf("%s export is disabled; add %q to [export] formats in the config", name, name)}, nil
	}
	return e, nil
}

// WriteFile exports msgs to path, creating its directory.
func WriteFile(ctx context.Context, e Exporter, msgs []parse.Message, path string) error {
	if u, ok := e.(Unavailable); ok {
		return u.Export(ctx, msgs, io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- output path comes from the user
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := e.Export(ctx, msgs, f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", e.Name(), err)
	}
	return f.Close()
}

// Unavailable stands in for a format that cannot be used.
type Unavailable struct {
	Format string
	Reason string
}

func (u Unavailable) Name() string { return u.Format }

func (u Unavailable) Ext() string { return u.Format }

func (u Unavailable) Export(context.Context, []parse.Message, io.Writer) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}
