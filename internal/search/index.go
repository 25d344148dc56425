package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatx/internal/index"
)

// Result is a message hit from the index.
type Result struct {
	ChatPath     string
	Seq          int
	Timestamp    string
	RawTimestamp string
	Sender       string
	Snippet      string
	Rank         float64
}

type Options struct {
	Query  string
	Sender string // "" = all senders
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Index searches every indexed chat. Queries use FTS5 syntax and are ranked
// by bm25; CJK queries fall back to a substring scan, newest first.
func Index(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

func filters(opts Options) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	// sender filter
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}

	// since filter
	if opts.Since != "" {
		conditions = append(conditions, "m.ts != '' AND m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{opts.Query}

	extra, extraArgs := filters(opts)
	conditions = append(conditions, extra...)
	args = append(args, extraArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.chat_path,
			m.seq,
			m.ts,
			m.ts_raw,
			m.sender,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	// LIKE match for CJK substring search
	conditions := []string{"m.body LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	extra, extraArgs := filters(opts)
	conditions = append(conditions, extra...)
	args = append(args, extraArgs...)

	query := fmt.Sprintf(`
		SELECT
			m.chat_path,
			m.seq,
			m.ts,
			m.ts_raw,
			m.sender,
			m.body
		FROM messages m
		WHERE %s
		ORDER BY m.ts DESC, m.chat_path, m.seq
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.ChatPath, &r.Seq, &r.Timestamp, &r.RawTimestamp, &r.Sender, &body); err != nil {
			return nil, err
		}
		r.Snippet = Snippet(body, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ChatPath, &r.Seq, &r.Timestamp,
			&r.RawTimestamp, &r.Sender,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
