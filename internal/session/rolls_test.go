package session

import (
	"testing"

	"dungeonsync.gg/internal/protocol"
)

func TestRollRelay_AllViewersSeeInitiatorOutcome(t *testing.T) {
	s := newTestSession()
	a := connect(t, s, "c1", "uA", "Anna")
	b := connect(t, s, "c2", "uB", "Ben")
	b.reset()

	s.handleMessage(a, raw(t, map[string]any{
		"type": protocol.TypeDiceRollStart,
		"args": map[string]any{
			"title":      "Pick the lock",
			"diceType":   "d20",
			"skillCheck": map[string]any{"ability": "dexterity", "skill": "sleight of hand"},
		},
	}))

	starts := b.messages(t, protocol.TypeDiceRollStart)
	if len(starts) != 1 {
		t.Fatalf("viewer starts=%d want=1", len(starts))
	}
	if starts[0]["playerId"] != "uA" {
		t.Fatalf("playerId=%v want=uA", starts[0]["playerId"])
	}

	s.handleMessage(a, raw(t, map[string]any{
		"type":    protocol.TypeDiceRollResult,
		"result":  17,
		"success": true,
	}))

	results := b.messages(t, protocol.TypeDiceRollResult)
	if len(results) != 1 {
		t.Fatalf("viewer results=%d want=1", len(results))
	}
	got := results[0]
	if got["playerId"] != "uA" || got["result"] != float64(17) || got["success"] != true {
		t.Fatalf("relayed outcome mismatch: %v", got)
	}

	s.handleMessage(a, raw(t, map[string]any{"type": protocol.TypeDiceRollClose}))
	if len(b.messages(t, protocol.TypeDiceRollClose)) != 1 {
		t.Fatalf("expected DICE_ROLL_CLOSE broadcast")
	}
	if _, ok := s.rolls["uA"]; ok {
		t.Fatalf("closed roll must be discarded")
	}

	// None of the roll relays trigger a full snapshot.
	if got := b.messages(t, protocol.TypeSyncState); len(got) != 0 {
		t.Fatalf("roll relays must suppress the full-state broadcast")
	}
}

func TestRollRestart_SupersedesPriorRoll(t *testing.T) {
	s := newTestSession()
	a := connect(t, s, "c1", "uA", "Anna")

	s.handleMessage(a, raw(t, map[string]any{
		"type": protocol.TypeDiceRollStart,
		"args": map[string]any{"diceType": "d20"},
	}))
	s.handleMessage(a, raw(t, map[string]any{
		"type": protocol.TypeDiceRollStart,
		"args": map[string]any{"diceType": "d6"},
	}))

	roll := s.rolls["uA"]
	if roll == nil || roll.phase != rollStarted {
		t.Fatalf("expected an active started roll")
	}
	if roll.args.DiceType != "d6" {
		t.Fatalf("diceType=%s want=d6 (second start supersedes)", roll.args.DiceType)
	}
}

func TestRollResult_WithoutStart(t *testing.T) {
	s := newTestSession()
	a := connect(t, s, "c1", "uA", "Anna")

	s.handleMessage(a, raw(t, map[string]any{
		"type":    protocol.TypeDiceRollResult,
		"result":  9,
		"success": false,
	}))
	code, ok := a.lastError(t)
	if !ok || code != protocol.ErrNotFound {
		t.Fatalf("error=%q want=%s", code, protocol.ErrNotFound)
	}
}

type recordingRollLogger struct {
	entries []RollEntry
}

func (r *recordingRollLogger) WriteRoll(e RollEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestRollLifecycle_Journaled(t *testing.T) {
	s := newTestSession()
	rec := &recordingRollLogger{}
	s.SetRollLogger(rec)
	a := connect(t, s, "c1", "uA", "Anna")

	s.handleMessage(a, raw(t, map[string]any{
		"type": protocol.TypeDiceRollStart,
		"args": map[string]any{"diceType": "d20"},
	}))
	s.handleMessage(a, raw(t, map[string]any{
		"type":    protocol.TypeDiceRollResult,
		"result":  20,
		"success": true,
	}))
	s.handleMessage(a, raw(t, map[string]any{"type": protocol.TypeDiceRollClose}))

	if len(rec.entries) != 3 {
		t.Fatalf("journal entries=%d want=3", len(rec.entries))
	}
	phases := []string{rec.entries[0].Phase, rec.entries[1].Phase, rec.entries[2].Phase}
	want := []string{"started", "resolved", "closed"}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases=%v want=%v", phases, want)
		}
	}
	if rec.entries[1].Result != 20 || !rec.entries[1].Success {
		t.Fatalf("resolved entry outcome mismatch: %+v", rec.entries[1])
	}
}
