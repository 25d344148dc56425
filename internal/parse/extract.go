package parse

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrNotFound is returned by ParseFile when the export file does not exist.
var ErrNotFound = errors.New("file not found")

// Format is one line layout of a chat export.
//
// Header must capture the raw timestamp in group 1 and the sender in group 2,
// and end right where the message body begins. Boundary matches the prefix
// that starts the next entry.
type Format struct {
	Name     string
	Header   *regexp.Regexp
	Boundary *regexp.Regexp
}

const (
	datePart   = `\d{1,2}/\d{1,2}/\d{2,4}`
	senderPart = `[^:]*[^\s\p{Zs}:][^:]*` // up to the first colon, not blank
	ws         = `[\s\p{Zs}]`             // includes the narrow no-break space before AM/PM
)

// Formats are tried in order against the whole document; the first one with
// at least one match is used for every entry.
var Formats = []Format{
	{
		Name:     "bracketed",
		Header:   regexp.MustCompile(`\[(` + datePart + `,` + ws + `\d{1,2}:\d{2}:\d{2})\]` + ws + `(` + senderPart + `):` + ws),
		Boundary: regexp.MustCompile(`\[` + datePart),
	},
	{
		Name:     "dashed-24h",
		Header:   regexp.MustCompile(`(` + datePart + `,` + ws + `\d{1,2}:\d{2})` + ws + `-` + ws + `(` + senderPart + `):` + ws),
		Boundary: regexp.MustCompile(datePart + `,` + ws + `\d{1,2}:\d{2}` + ws + `-`),
	},
	{
		Name:     "dashed-12h",
		Header:   regexp.MustCompile(`(` + datePart + `,` + ws + `\d{1,2}:\d{2}` + ws + `[AP]M)` + ws + `-` + ws + `(` + senderPart + `):` + ws),
		Boundary: regexp.MustCompile(datePart + `,` + ws + `\d{1,2}:\d{2}` + ws + `[AP]M` + ws + `-`),
	},
}

// Extract returns the messages found in content, in source order.
// An unrecognized format and empty content both yield an empty slice.
func Extract(content string) []Message {
	msgs, _ := ExtractFormat(content)
	return msgs
}

// ExtractFormat is Extract that also reports the name of the format used.
func ExtractFormat(content string) ([]Message, string) {
	for _, f := range Formats {
		if msgs := f.Extract(content); len(msgs) > 0 {
			return msgs, f.Name
		}
	}
	return []Message{}, ""
}

// Extract applies a single format to content.
//
// A body runs from the end of its header up to the next Boundary match, which
// must be at least one byte past the body start, or the end of content. A body
// line that happens to begin with a timestamp therefore ends the message.
func (f Format) Extract(content string) []Message {
	var msgs []Message
	pos := 0
	line := 1
	lineAt := 0

	for pos < len(content) {
		loc := f.Header.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		bodyStart := pos + loc[1]
		if bodyStart >= len(content) {
			break
		}

		bodyEnd := len(content)
		if b := f.Boundary.FindStringIndex(content[bodyStart+1:]); b != nil {
			bodyEnd = bodyStart + 1 + b[0]
		}

		line += strings.Count(content[lineAt:start], "\n")
		lineAt = start

		raw := content[pos+loc[2] : pos+loc[3]]
		msgs = append(msgs, Message{
			RawTimestamp: raw,
			Timestamp:    ParseTimestamp(raw),
			Sender:       strings.TrimSpace(content[pos+loc[4] : pos+loc[5]]),
			Body:         strings.TrimSpace(content[bodyStart:bodyEnd]),
			Offset:       start,
			Line:         line,
		})
		pos = bodyEnd
	}
	return msgs
}

// ParseFile reads an export and extracts its messages. A missing file is
// reported as ErrNotFound before any parsing happens.
func ParseFile(path string) (*Chat, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path is expected
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	msgs, format := ExtractFormat(string(data))
	return &Chat{
		Path:     path,
		Format:   format,
		Size:     info.Size(),
		Mtime:    info.ModTime(),
		Messages: msgs,
	}, nil
}
