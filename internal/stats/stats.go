// Package stats aggregates parsed chat messages.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

type SenderCount struct {
	Sender  string
	Count   int
	Percent float64
}

type Report struct {
	Total   int
	Senders []SenderCount // by Count descending, ties in order of first message
	First   *time.Time    // first present timestamp, nil if none parsed
	Last    *time.Time    // last present timestamp
}

func Compute(msgs []parse.Message) Report {
	r := Report{Total: len(msgs)}

	idx := make(map[string]int)
	for _, m := range msgs {
		i, ok := idx[m.Sender]
		if !ok {
			i = len(r.Senders)
			idx[m.Sender] = i
			r.Senders = append(r.Senders, SenderCount{Sender: m.Sender})
		}
		r.Senders[i].Count++

		if m.Timestamp != nil {
			if r.First == nil {
				r.First = m.Timestamp
			}
			r.Last = m.Timestamp
		}
	}

	sort.SliceStable(r.Senders, func(i, j int) bool {
		return r.Senders[i].Count > r.Senders[j].Count
	})
	for i := range r.Senders {
		r.Senders[i].Percent = float64(r.Senders[i].Count) / float64(r.Total) * 100
	}
	return r
}

// BySender returns the messages sent by sender, in order.
func BySender(msgs []parse.Message, sender string) []parse.Message {
	var out []parse.Message
	for _, m := range msgs {
		if m.Sender == sender {
			out = append(out, m)
		}
	}
	return out
}

const rule = "------------------------------------------------------------"

// WriteText prints the report the way the stats command shows it.
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Total messages: %d\n", r.Total)
	b.WriteString("\nMessages per sender:\n")
	b.WriteString(rule + "\n")
	for _, s := range r.Senders {
		fmt.Fprintf(&b, "%s: %d messages (%.1f%%)\n", s.Sender, s.Count, s.Percent)
	}

	if r.First != nil && r.Last != nil {
		b.WriteString("\nDate range:\n")
		b.WriteString(rule + "\n")
		fmt.Fprintf(&b, "First message: %s\n", r.First.Format(time.DateTime))
		fmt.Fprintf(&b, "Last message: %s\n", r.Last.Format(time.DateTime))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
