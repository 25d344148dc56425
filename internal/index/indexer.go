package index

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

// IndexFiles parses the export files named by args (files, directories or
// globs) into db. Unchanged files are skipped, and chats whose files no longer
// exist are pruned. Changed files are parsed in parallel and written in path
// order.
func IndexFiles(db *DB, args []string) (Stats, error) {
	var stats Stats

	paths, err := scan.Expand(args)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(paths)

	var todo []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			stats.Errors++
			slog.Warn("stat export", "path", path, "error", err)
			continue
		}

		needs, err := needsUpdate(db, path, info.ModTime().Unix(), info.Size())
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}
		todo = append(todo, path)
	}

	chats := make([]*parse.Chat, len(todo))
	errs := make([]error, len(todo))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range todo {
		i, path := i, path
		g.Go(func() error {
			chats[i], errs[i] = parse.ParseFile(path)
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range todo {
		if errs[i] != nil {
			stats.Errors++
			slog.Warn("parse export", "path", path, "error", errs[i])
			if err := db.DeleteChat(path); err != nil {
				slog.Warn("drop stale chat", "path", path, "error", err)
			}
			continue
		}
		chat := chats[i]
		if len(chat.Messages) == 0 {
			// recorded with no messages so the file is skipped until it changes
			stats.Empty++
			slog.Info("no messages recognized", "path", path)
			if err := indexChat(db, chat); err != nil {
				stats.Errors++
				slog.Warn("index export", "path", path, "error", err)
			}
			continue
		}

		if err := indexChat(db, chat); err != nil {
			stats.Errors++
			slog.Warn("index export", "path", path, "error", err)
			continue
		}
		slog.Debug("indexed", "path", path, "format", chat.Format, "messages", len(chat.Messages))
		stats.Updated++
	}

	pruned, err := pruneChats(db)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func needsUpdate(db *DB, path string, mtime, size int64) (bool, error) {
	info, err := db.GetChatInfo(path)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new chat
	}
	return info.Mtime != mtime || info.Size != size, nil
}

// indexChat replaces the stored chat in one transaction.
func indexChat(db *DB, chat *parse.Chat) error {
	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// delete old data first
	if err := deleteChat(tx, chat.Path); err != nil {
		return err
	}

	var first, last string
	for _, m := range chat.Messages {
		if ts := m.FormatTime(); ts != "" {
			if first == "" {
				first = ts
			}
			last = ts
		}
	}

	_, err = tx.Exec(
		`INSERT INTO chats (path, format, mtime, size, messages, first_ts, last_ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chat.Path,
		chat.Format,
		chat.Mtime.Unix(),
		chat.Size,
		len(chat.Messages),
		first,
		last,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_path, seq, ts, ts_raw, sender, body, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range chat.Messages {
		_, err := stmt.Exec(
			chat.Path,
			i,
			m.FormatTime(),
			m.RawTimestamp,
			m.Sender,
			m.Body,
			m.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneChats(db *DB) (int, error) {
	paths, err := db.AllChatPaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := db.DeleteChat(p); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
