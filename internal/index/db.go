package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/chatx/internal/parse"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS chats (
    path      TEXT PRIMARY KEY,
    format    TEXT NOT NULL DEFAULT '',
    mtime     INTEGER NOT NULL DEFAULT 0,
    size      INTEGER NOT NULL DEFAULT 0,
    messages  INTEGER NOT NULL DEFAULT 0,
    first_ts  TEXT NOT NULL DEFAULT '',
    last_ts   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    id        INTEGER PRIMARY KEY,
    chat_path TEXT NOT NULL,
    seq       INTEGER NOT NULL,
    ts        TEXT NOT NULL DEFAULT '',
    ts_raw    TEXT NOT NULL,
    sender    TEXT NOT NULL,
    body      TEXT NOT NULL,
    line      INTEGER NOT NULL DEFAULT 0,
    UNIQUE (chat_path, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    body,
    content=messages,
    content_rowid=id,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.id, old.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.id, old.body);
    INSERT INTO messages_fts(rowid, body) VALUES (new.id, new.body);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever extraction logic changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	// force re-index by resetting all chat mtime/size to 0
	if _, err := d.db.Exec("UPDATE chats SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ChatInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetChatInfo(path string) (*ChatInfo, error) {
	var info ChatInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM chats WHERE path = ?",
		path,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllChatPaths() ([]string, error) {
	rows, err := d.db.Query("SELECT path FROM chats ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (d *DB) DeleteChat(path string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChat(tx, path); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteChat(tx *sql.Tx, path string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE chat_path = ?", path); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM chats WHERE path = ?", path)
	return err
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type ChatRow struct {
	Path     string
	Format   string
	Messages int
	FirstTs  string
	LastTs   string
}

func (d *DB) GetChat(path string) (*ChatRow, error) {
	var c ChatRow
	err := d.db.QueryRow(
		"SELECT path, format, messages, first_ts, last_ts FROM chats WHERE path = ?",
		path,
	).Scan(&c.Path, &c.Format, &c.Messages, &c.FirstTs, &c.LastTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Messages loads the stored messages of a chat in source order.
func (d *DB) Messages(path string) ([]parse.Message, error) {
	rows, err := d.db.Query(
		"SELECT ts, ts_raw, sender, body, line FROM messages WHERE chat_path = ? ORDER BY seq",
		path,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []parse.Message
	for rows.Next() {
		var ts string
		var m parse.Message
		if err := rows.Scan(&ts, &m.RawTimestamp, &m.Sender, &m.Body, &m.Line); err != nil {
			return nil, err
		}
		if ts != "" {
			t, err := time.Parse(parse.TimeLayout, ts)
			if err != nil {
				return nil, fmt.Errorf("stored timestamp %q: %w", ts, err)
			}
			m.Timestamp = &t
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
