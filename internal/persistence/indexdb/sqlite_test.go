package indexdb

import (
	"path/filepath"
	"testing"

	"dungeonsync.gg/internal/session"
)

func openTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_EventCounts(t *testing.T) {
	idx := openTestIndex(t)

	entries := []session.EventEntry{
		{Time: "2025-06-01T00:00:00Z", ConnID: "c1", UserID: "u1", Type: "PLAYER_CONNECTION_REQUEST"},
		{Time: "2025-06-01T00:00:01Z", ConnID: "c1", UserID: "u1", Type: "UPDATE_PLAYER_POSITION", Suppress: true},
		{Time: "2025-06-01T00:00:02Z", ConnID: "c1", UserID: "u1", Type: "UPDATE_PLAYER_POSITION", Suppress: true},
		{Time: "2025-06-01T00:00:03Z", ConnID: "c2", Type: "JOIN_LOBBY_REQUEST", ErrorCode: "E_UNBOUND_CONNECTION"},
	}
	for _, e := range entries {
		if err := idx.WriteEvent(e); err != nil {
			t.Fatal(err)
		}
	}
	idx.Flush()

	counts, err := idx.EventCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["UPDATE_PLAYER_POSITION"] != 2 || counts["PLAYER_CONNECTION_REQUEST"] != 1 || counts["JOIN_LOBBY_REQUEST"] != 1 {
		t.Fatalf("counts=%v", counts)
	}
}

func TestIndex_RollHistoryNewestFirst(t *testing.T) {
	idx := openTestIndex(t)

	rolls := []session.RollEntry{
		{Time: "2025-06-01T00:00:00Z", InitiatorID: "uA", Phase: "started", DiceType: "d20"},
		{Time: "2025-06-01T00:00:01Z", InitiatorID: "uA", Phase: "resolved", DiceType: "d20", Result: 17, Success: true},
		{Time: "2025-06-01T00:00:02Z", InitiatorID: "uA", Phase: "closed"},
		{Time: "2025-06-01T00:00:03Z", InitiatorID: "uB", Phase: "started", DiceType: "d6"},
	}
	for _, r := range rolls {
		if err := idx.WriteRoll(r); err != nil {
			t.Fatal(err)
		}
	}
	idx.Flush()

	got, err := idx.RollHistory("uA", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("rows=%d want=3", len(got))
	}
	if got[0].Phase != "closed" || got[2].Phase != "started" {
		t.Fatalf("order wrong: %+v", got)
	}
	if got[1].Result != 17 || !got[1].Success {
		t.Fatalf("resolved row: %+v", got[1])
	}

	all, err := idx.RollHistory("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("all rows=%d want=4", len(all))
	}
	if all[0].InitiatorID != "uB" {
		t.Fatalf("newest first: %+v", all[0])
	}
}

func TestIndex_WriteAfterCloseIsNoop(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := idx.WriteEvent(session.EventEntry{Type: "X"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.WriteRoll(session.RollEntry{InitiatorID: "u"}); err != nil {
		t.Fatal(err)
	}
}
