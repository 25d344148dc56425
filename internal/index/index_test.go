package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "db", "chatx.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeExport(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexFiles(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	chat := filepath.Join(dir, "family.txt")
	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: Hello\nworld\n[02/02/2024, 99:00:00] Bob: Hi there\n")
	writeExport(t, filepath.Join(dir, "notes.txt"), "nothing to see here\n")

	stats, err := IndexFiles(db, []string{dir})
	if err != nil {
		t.Fatalf("IndexFiles() error = %v", err)
	}
	if stats.Scanned != 2 || stats.Updated != 1 || stats.Empty != 1 || stats.Errors != 0 {
		t.Errorf("stats = %s", stats)
	}

	row, err := db.GetChat(chat)
	if err != nil {
		t.Fatalf("GetChat() error = %v", err)
	}
	if row == nil {
		t.Fatal("GetChat() = nil")
	}
	if row.Format != "bracketed" || row.Messages != 2 {
		t.Errorf("row = %+v", row)
	}
	if row.FirstTs != "2024-02-01T09:15:00" || row.LastTs != "2024-02-01T09:15:00" {
		t.Errorf("first/last = %q/%q", row.FirstTs, row.LastTs)
	}

	msgs, err := db.Messages(chat)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Body != "Hello\nworld" || msgs[0].Timestamp == nil {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Timestamp != nil || msgs[1].RawTimestamp != "02/02/2024, 99:00:00" || msgs[1].Line != 3 {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}

	n, err := db.MessageCount()
	if err != nil || n != 2 {
		t.Errorf("MessageCount() = %d, %v", n, err)
	}
	fts, err := db.FTSCount()
	if err != nil || fts != 2 {
		t.Errorf("FTSCount() = %d, %v", fts, err)
	}
}

func TestIndexFiles_SkipsUnchangedAndReindexesChanged(t *testing.T) {
	db := openTestDB(t)
	chat := filepath.Join(t.TempDir(), "chat.txt")
	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n")

	if _, err := IndexFiles(db, []string{chat}); err != nil {
		t.Fatal(err)
	}
	stats, err := IndexFiles(db, []string{chat})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || stats.Updated != 0 {
		t.Errorf("second run stats = %s", stats)
	}

	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n[01/02/2024, 09:16:00] Bob: two\n")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(chat, future, future); err != nil {
		t.Fatal(err)
	}

	stats, err = IndexFiles(db, []string{chat})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Errorf("third run stats = %s", stats)
	}
	n, err := db.MessageCount()
	if err != nil || n != 2 {
		t.Errorf("MessageCount() = %d, %v", n, err)
	}
}

func TestIndexFiles_PrunesDeletedFiles(t *testing.T) {
	db := openTestDB(t)
	chat := filepath.Join(t.TempDir(), "chat.txt")
	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n")

	if _, err := IndexFiles(db, []string{chat}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(chat); err != nil {
		t.Fatal(err)
	}

	stats, err := IndexFiles(db, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 1 {
		t.Errorf("stats = %s", stats)
	}
	count, err := db.ChatCount()
	if err != nil || count != 0 {
		t.Errorf("ChatCount() = %d, %v", count, err)
	}
	fts, err := db.FTSCount()
	if err != nil || fts != 0 {
		t.Errorf("FTSCount() = %d, %v", fts, err)
	}
}

func TestIndexFiles_MissingFile(t *testing.T) {
	db := openTestDB(t)
	stats, err := IndexFiles(db, []string{filepath.Join(t.TempDir(), "missing.txt")})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 1 {
		t.Errorf("stats = %s", stats)
	}
}

func TestGetChat_Unknown(t *testing.T) {
	db := openTestDB(t)
	row, err := db.GetChat("/nope.txt")
	if err != nil || row != nil {
		t.Errorf("GetChat() = %+v, %v", row, err)
	}
}

func TestIndexFiles_RelativePathsSurviveChdir(t *testing.T) {
	db := openTestDB(t)
	dirA, dirB := t.TempDir(), t.TempDir()
	writeExport(t, filepath.Join(dirA, "one.txt"), "[01/02/2024, 09:15:00] Alice: one\n")
	writeExport(t, filepath.Join(dirB, "two.txt"), "[01/02/2024, 09:16:00] Bob: two\n")

	chdir(t, dirA)
	if _, err := IndexFiles(db, []string{"one.txt"}); err != nil {
		t.Fatal(err)
	}
	chdir(t, dirB)
	stats, err := IndexFiles(db, []string{"two.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pruned != 0 {
		t.Errorf("stats = %s", stats)
	}

	paths, err := db.AllChatPaths()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dirA, "one.txt"), filepath.Join(dirB, "two.txt")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("AllChatPaths() = %v, want %v", paths, want)
	}
}

func TestIndexFiles_ChangedToUnrecognizedDropsMessages(t *testing.T) {
	db := openTestDB(t)
	chat := filepath.Join(t.TempDir(), "c.txt")
	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n")
	if _, err := IndexFiles(db, []string{chat}); err != nil {
		t.Fatal(err)
	}

	writeExport(t, chat, "just a plain paragraph with no chat lines\n")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(chat, future, future); err != nil {
		t.Fatal(err)
	}

	stats, err := IndexFiles(db, []string{chat})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Empty != 1 {
		t.Errorf("stats = %s", stats)
	}
	msgs, err := db.Messages(chat)
	if err != nil || len(msgs) != 0 {
		t.Errorf("Messages() = %+v, %v; want none", msgs, err)
	}
	fts, err := db.FTSCount()
	if err != nil || fts != 0 {
		t.Errorf("FTSCount() = %d, %v", fts, err)
	}

	// unchanged since, so the next run skips it
	stats, err = IndexFiles(db, []string{chat})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || stats.Empty != 0 {
		t.Errorf("second run stats = %s", stats)
	}
}

func TestIndexFiles_FailedReindexKeepsPreviousChat(t *testing.T) {
	db := openTestDB(t)
	chat := filepath.Join(t.TempDir(), "c.txt")
	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n")
	if _, err := IndexFiles(db, []string{chat}); err != nil {
		t.Fatal(err)
	}

	_, err := db.Raw().Exec(`CREATE TRIGGER reject_boom BEFORE INSERT ON messages
		WHEN new.body = 'boom' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	if err != nil {
		t.Fatal(err)
	}

	writeExport(t, chat, "[01/02/2024, 09:15:00] Alice: one\n[01/02/2024, 09:16:00] Bob: boom\n")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(chat, future, future); err != nil {
		t.Fatal(err)
	}

	stats, err := IndexFiles(db, []string{chat})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 1 || stats.Updated != 0 {
		t.Errorf("stats = %s", stats)
	}
	msgs, err := db.Messages(chat)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Body != "one" {
		t.Errorf("Messages() = %+v, want the previously indexed message", msgs)
	}
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
