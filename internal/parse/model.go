package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the ISO-like form timestamps take in exports and the index.
const TimeLayout = "2006-01-02T15:04:05"

// Message is one entry extracted from a chat export.
type Message struct {
	RawTimestamp string
	Timestamp    *time.Time // nil when no known layout matched RawTimestamp
	Sender       string
	Body         string

	Offset int // byte offset of the entry in the source text
	Line   int // 1-based line of the entry start
}

type messageJSON struct {
	Timestamp    *string `json:"timestamp"`
	RawTimestamp string  `json:"timestamp_str"`
	Sender       string  `json:"sender"`
	Body         string  `json:"message"`
}

// FormatTime returns the timestamp in TimeLayout, or "" when absent.
func (m Message) FormatTime() string {
	if m.Timestamp == nil {
		return ""
	}
	return m.Timestamp.Format(TimeLayout)
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		RawTimestamp: m.RawTimestamp,
		Sender:       m.Sender,
		Body:         m.Body,
	}
	if m.Timestamp != nil {
		s := m.FormatTime()
		out.Timestamp = &s
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON accepts the exported form. A null timestamp falls back to
// parsing timestamp_str.
func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Message{
		RawTimestamp: in.RawTimestamp,
		Sender:       in.Sender,
		Body:         in.Body,
	}
	if in.Timestamp != nil && *in.Timestamp != "" {
		t, err := time.Parse(TimeLayout, *in.Timestamp)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", *in.Timestamp, err)
		}
		m.Timestamp = &t
		return nil
	}
	m.Timestamp = ParseTimestamp(in.RawTimestamp)
	return nil
}

// Chat is a parsed export file. Messages is read-only once built.
type Chat struct {
	Path     string
	Format   string // name of the matched Format, "" when nothing matched
	Size     int64
	Mtime    time.Time
	Messages []Message
}

// Find returns the index of the first message whose body contains query
// (case-insensitive), or -1.
func (c *Chat) Find(query string) int {
	q := strings.ToLower(query)
	for i, m := range c.Messages {
		if strings.Contains(strings.ToLower(m.Body), q) {
			return i
		}
	}
	return -1
}
