package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorSender  = "\033[1;34m" // bold blue
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Hit     int    // index of the hit message, -1 for none
	Context int    // messages before/after hit to show; <0 shows all
	Width   int    // wrap width (0 = no wrap)
	Query   string // keyword to highlight
	Title   string // header line, usually the export path
}

// highlightKeywords wraps case-insensitive matches of query in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	lower := strings.ToLower(query)
	// lowercasing must keep byte offsets aligned with text
	if len(lower) != len(query) {
		return text
	}
	i := 0
	for i < len(text) {
		rest := strings.ToLower(text[i:])
		if len(rest) != len(text)-i {
			break
		}
		idx := strings.Index(rest, lower)
		if idx < 0 {
			break
		}
		pos := i + idx
		orig := text[pos : pos+len(query)]
		replacement := colorBoldRed + orig + colorReset
		text = text[:pos] + replacement + text[pos+len(query):]
		i = pos + len(replacement)
	}
	return text
}
// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Conversation renders a window of msgs around opts.Hit and returns the
// content and the 0-based line of the hit header (-1 if no hit).
func Conversation(msgs []parse.Message, opts Options) (string, int) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if len(msgs) == 0 {
		return "(no messages)", -1
	}

	start, end := 0, len(msgs)
	if opts.Hit >= 0 && opts.Hit < len(msgs) && opts.Context > 0 {
		start = max(opts.Hit-opts.Context, 0)
		end = min(opts.Hit+opts.Context+1, len(msgs))
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + strings.Repeat("-", 50) + colorReset

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	if opts.Title != "" {
		writeLine(fmt.Sprintf("%s--- %s (%d messages) ---%s", colorDim, opts.Title, len(msgs), colorReset))
	}
	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		m := msgs[i]
		if i > start {
			writeLine(separator)
		}

		if i == opts.Hit {
			hitLine = lineCount
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, m.Sender, m.RawTimestamp, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", colorSender, m.Sender, colorReset, colorDim, m.RawTimestamp, colorReset))
		}

		text := highlightKeywords(m.Body, opts.Query)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("")
	}

	if after := len(msgs) - end; after > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine
}
