package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"dungeonsync.gg/internal/session"
)

func readJSONL(t *testing.T, dir string) []map[string]any {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("journal files=%v err=%v", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var out []map[string]any
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestEventLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)

	entries := []session.EventEntry{
		{Time: "2025-06-01T00:00:00Z", ConnID: "c1", UserID: "u1", Type: "PLAYER_CONNECTION_REQUEST"},
		{Time: "2025-06-01T00:00:01Z", ConnID: "c1", UserID: "u1", Type: "CREATE_LOBBY"},
	}
	for _, e := range entries {
		if err := l.WriteEvent(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	got := readJSONL(t, filepath.Join(dir, "events"))
	if len(got) != 2 {
		t.Fatalf("lines=%d want=2", len(got))
	}
	if got[0]["type"] != "PLAYER_CONNECTION_REQUEST" || got[0]["connId"] != "c1" {
		t.Fatalf("first line: %v", got[0])
	}
	if got[1]["type"] != "CREATE_LOBBY" {
		t.Fatalf("second line: %v", got[1])
	}
}

func TestRollLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewRollLogger(dir)

	if err := l.WriteRoll(session.RollEntry{
		Time: "2025-06-01T00:00:00Z", InitiatorID: "uA", Phase: "resolved",
		DiceType: "d20", Result: 17, Success: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	got := readJSONL(t, filepath.Join(dir, "rolls"))
	if len(got) != 1 {
		t.Fatalf("lines=%d want=1", len(got))
	}
	if got[0]["phase"] != "resolved" || got[0]["result"] != float64(17) {
		t.Fatalf("line: %v", got[0])
	}
}

func TestWriter_CloseBeforeAnyWrite(t *testing.T) {
	w := NewJSONLZstdWriter(t.TempDir(), "x")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
