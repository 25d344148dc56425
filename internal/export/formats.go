package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

// JSON writes an indented array of message objects with non-ASCII and HTML
// characters left unescaped.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Ext() string { return "json" }

func (JSON) Export(_ context.Context, msgs []parse.Message, w io.Writer) error {
	if msgs == nil {
		msgs = []parse.Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(msgs)
}

// CSV writes a header row followed by one row per message.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Ext() string { return "csv" }

func (CSV) Export(ctx context.Context, msgs []parse.Message, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Fields); err != nil {
		return err
	}
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write([]string{m.FormatTime(), m.RawTimestamp, m.Sender, m.Body}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// YAML writes a sequence of message mappings.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Ext() string { return "yaml" }

type yamlMessage struct {
	Timestamp    *string `yaml:"timestamp"`
	RawTimestamp string  `yaml:"timestamp_str"`
	Sender       string  `yaml:"sender"`
	Body         string  `yaml:"message"`
}

func (YAML) Export(_ context.Context, msgs []parse.Message, w io.Writer) error {
	rows := make([]yamlMessage, 0, len(msgs))
	for _, m := range msgs {
		row := yamlMessage{RawTimestamp: m.RawTimestamp, Sender: m.Sender, Body: m.Body}
		if m.Timestamp != nil {
			ts := m.FormatTime()
			row.Timestamp = &ts
		}
		rows = append(rows, row)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return enc.Close()
}
