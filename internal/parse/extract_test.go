package parse

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func date(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

func TestExtract_Bracketed(t *testing.T) {
	content := "[01/02/2024, 09:15:00] Alice: Hello\nworld\n[02/02/2024, 10:00:00] Bob: Hi"

	msgs, format := ExtractFormat(content)
	if format != "bracketed" {
		t.Errorf("format = %q, want bracketed", format)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	tests := []struct {
		sender string
		body   string
		raw    string
		ts     time.Time
		line   int
	}{
		{"Alice", "Hello\nworld", "01/02/2024, 09:15:00", date(2024, time.February, 1, 9, 15, 0), 1},
		{"Bob", "Hi", "02/02/2024, 10:00:00", date(2024, time.February, 2, 10, 0, 0), 3},
	}
	for i, tt := range tests {
		m := msgs[i]
		if m.Sender != tt.sender {
			t.Errorf("msgs[%d].Sender = %q, want %q", i, m.Sender, tt.sender)
		}
		if m.Body != tt.body {
			t.Errorf("msgs[%d].Body = %q, want %q", i, m.Body, tt.body)
		}
		if m.RawTimestamp != tt.raw {
			t.Errorf("msgs[%d].RawTimestamp = %q, want %q", i, m.RawTimestamp, tt.raw)
		}
		if m.Timestamp == nil || !m.Timestamp.Equal(tt.ts) {
			t.Errorf("msgs[%d].Timestamp = %v, want %v", i, m.Timestamp, tt.ts)
		}
		if m.Line != tt.line {
			t.Errorf("msgs[%d].Line = %d, want %d", i, m.Line, tt.line)
		}
	}
}

func TestExtract_Dashed24h(t *testing.T) {
	content := `15/03/2024, 14:05 - Carol: Lunch?
15/03/2024, 14:06 - Dave: Sure
see you at 1
16/03/24, 8:00 - Carol: Morning`

	msgs, format := ExtractFormat(content)
	if format != "dashed-24h" {
		t.Errorf("format = %q, want dashed-24h", format)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[1].Body != "Sure\nsee you at 1" {
		t.Errorf("msgs[1].Body = %q", msgs[1].Body)
	}
	if want := date(2024, time.March, 15, 14, 5, 0); msgs[0].Timestamp == nil || !msgs[0].Timestamp.Equal(want) {
		t.Errorf("msgs[0].Timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
	if want := date(2024, time.March, 16, 8, 0, 0); msgs[2].Timestamp == nil || !msgs[2].Timestamp.Equal(want) {
		t.Errorf("msgs[2].Timestamp = %v, want %v", msgs[2].Timestamp, want)
	}
}

func TestExtract_Dashed12hNarrowNoBreakSpace(t *testing.T) {
	content := "1/25/24, 9:15\u202fPM - Erin: Good night\n1/26/24, 7:02\u202fAM - Frank: Morning"

	msgs, format := ExtractFormat(content)
	if format != "dashed-12h" {
		t.Errorf("format = %q, want dashed-12h", format)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].RawTimestamp != "1/25/24, 9:15\u202fPM" {
		t.Errorf("msgs[0].RawTimestamp = %q, want source text", msgs[0].RawTimestamp)
	}
	if msgs[0].Sender != "Erin" || msgs[0].Body != "Good night" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Sender != "Frank" || msgs[1].Body != "Morning" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
	if want := date(2024, time.January, 25, 21, 15, 0); msgs[0].Timestamp == nil || !msgs[0].Timestamp.Equal(want) {
		t.Errorf("msgs[0].Timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
	if want := date(2024, time.January, 26, 7, 2, 0); msgs[1].Timestamp == nil || !msgs[1].Timestamp.Equal(want) {
		t.Errorf("msgs[1].Timestamp = %v, want %v", msgs[1].Timestamp, want)
	}
}

func TestExtract_Dashed12h(t *testing.T) {
	content := `1/25/24, 9:15 PM - Erin: Good night
1/26/24, 7:02 AM - Frank: Morning all`

	msgs, format := ExtractFormat(content)
	if format != "dashed-12h" {
		t.Errorf("format = %q, want dashed-12h", format)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != "Erin" || msgs[0].Body != "Good night" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	// 25 is not a month, so the month-first layout is used.
	if want := date(2024, time.January, 25, 21, 15, 0); msgs[0].Timestamp == nil || !msgs[0].Timestamp.Equal(want) {
		t.Errorf("msgs[0].Timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
	if want := date(2024, time.January, 26, 7, 2, 0); msgs[1].Timestamp == nil || !msgs[1].Timestamp.Equal(want) {
		t.Errorf("msgs[1].Timestamp = %v, want %v", msgs[1].Timestamp, want)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"paragraph", "Just a plain paragraph.\nNothing that looks like a chat here."},
		{"timestamp without sender", "[01/02/2024, 09:15:00] no colon anywhere"},
		{"header at end of input", "[01/02/2024, 09:15:00] Alice: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, format := ExtractFormat(tt.content)
			if msgs == nil {
				t.Fatal("ExtractFormat() returned nil slice, want empty")
			}
			if len(msgs) != 0 {
				t.Errorf("got %d messages, want 0: %+v", len(msgs), msgs)
			}
			if format != "" {
				t.Errorf("format = %q, want empty", format)
			}
		})
	}
}

func TestExtract_FirstFormatWins(t *testing.T) {
	// The dashed line would match format 2 on its own, but the bracketed
	// format matched first, so the dashed line stays inside a body.
	content := "[01/02/2024, 09:15:00] Alice: Hi\n01/02/2024, 09:16 - Bob: ignored"

	msgs, format := ExtractFormat(content)
	if format != "bracketed" {
		t.Fatalf("format = %q, want bracketed", format)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "Bob: ignored") {
		t.Errorf("Body = %q, want the dashed line kept", msgs[0].Body)
	}
}

func TestExtract_TimestampCollisionSplitsBody(t *testing.T) {
	// A body line starting with a timestamp-shaped prefix ends the message.
	content := "[01/02/2024, 09:15:00] Alice: see\n[03/02/2024 notes\n[02/02/2024, 10:00:00] Bob: Hi"

	msgs := Extract(content)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Body != "see" {
		t.Errorf("msgs[0].Body = %q, want %q", msgs[0].Body, "see")
	}
	if msgs[1].Sender != "Bob" {
		t.Errorf("msgs[1].Sender = %q, want Bob", msgs[1].Sender)
	}
}

func TestExtract_SenderStopsAtFirstColon(t *testing.T) {
	content := "[01/02/2024, 09:15:00] Team: Alpha: status green"

	msgs := Extract(content)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Sender != "Team" {
		t.Errorf("Sender = %q, want Team", msgs[0].Sender)
	}
	if msgs[0].Body != "Alpha: status green" {
		t.Errorf("Body = %q", msgs[0].Body)
	}
}

func TestExtract_UnparseableTimestampKept(t *testing.T) {
	// 2-digit hour 25 matches the pattern but no layout.
	content := "[01/02/2024, 25:15:00] Alice: late\n[02/02/2024, 10:00:00] Bob: Hi"

	msgs := Extract(content)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Timestamp != nil {
		t.Errorf("msgs[0].Timestamp = %v, want nil", msgs[0].Timestamp)
	}
	if msgs[0].RawTimestamp != "01/02/2024, 25:15:00" {
		t.Errorf("msgs[0].RawTimestamp = %q", msgs[0].RawTimestamp)
	}
	if msgs[1].Timestamp == nil {
		t.Error("msgs[1].Timestamp = nil, want parsed")
	}
}

func TestExtract_Invariants(t *testing.T) {
	inputs := []string{
		"[01/02/2024, 09:15:00] Alice: a\n[01/02/2024, 09:16:00] Bob: b\nmore\n[01/02/2024, 09:17:00] Carol: c",
		"15/03/2024, 14:05 - Carol: x\n15/03/2024, 14:06 - Dave: y",
		"1/25/24, 9:15 PM - Erin: z\n1/26/24, 7:02 AM - Frank: w\n1/26/24, 7:03 AM - Erin: v",
	}

	for _, in := range inputs {
		msgs := Extract(in)
		if len(msgs) == 0 {
			t.Fatalf("Extract(%q) returned no messages", in)
		}
		for i, m := range msgs {
			if m.Sender == "" || m.RawTimestamp == "" {
				t.Errorf("message %d has empty sender or timestamp: %+v", i, m)
			}
			if !strings.Contains(in, m.Sender+": "+m.Body) {
				t.Errorf("message %d %q: %q not found in source", i, m.Sender, m.Body)
			}
			if i > 0 && m.Offset <= msgs[i-1].Offset {
				t.Errorf("message %d offset %d not after %d", i, m.Offset, msgs[i-1].Offset)
			}
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	content := "[03/04/2024, 09:15:00] Alice: a\n[04/04/2024, 09:15:00] Bob: b"
	a := Extract(content)
	b := Extract(content)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].FormatTime() != b[i].FormatTime() || a[i].Body != b[i].Body {
			t.Errorf("message %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")
	content := "[01/02/2024, 09:15:00] Alice: Héllo 👋\n[02/02/2024, 10:00:00] Bob: Hi\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	chat, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if chat.Format != "bracketed" {
		t.Errorf("Format = %q, want bracketed", chat.Format)
	}
	if len(chat.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(chat.Messages))
	}
	if chat.Messages[0].Body != "Héllo 👋" {
		t.Errorf("Body = %q", chat.Messages[0].Body)
	}
	if chat.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", chat.Size, len(content))
	}
	if got := chat.Find("HI"); got != 1 {
		t.Errorf("Find(HI) = %d, want 1", got)
	}
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ParseFile() error = %v, want ErrNotFound", err)
	}
}

func TestParseFile_Directory(t *testing.T) {
	if _, err := ParseFile(t.TempDir()); err == nil {
		t.Error("ParseFile(dir) expected error")
	}
}
