package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"dungeonsync.gg/internal/protocol"
)

// fakePeer records everything the session pushes at it.
type fakePeer struct {
	id     string
	sent   [][]byte
	topics []string
}

func (f *fakePeer) ID() string             { return f.id }
func (f *fakePeer) Send(b []byte)          { f.sent = append(f.sent, b) }
func (f *fakePeer) Subscribe(topic string) { f.topics = append(f.topics, topic) }
func (f *fakePeer) Publish(string, []byte) {}

func (f *fakePeer) reset() { f.sent = nil }

// messages decodes every sent frame of the given type.
func (f *fakePeer) messages(t *testing.T, msgType string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, b := range f.sent {
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("undecodable frame: %v", err)
		}
		if m["type"] == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakePeer) lastError(t *testing.T) (code string, ok bool) {
	t.Helper()
	errs := f.messages(t, protocol.TypeError)
	if len(errs) == 0 {
		return "", false
	}
	code, _ = errs[len(errs)-1]["code"].(string)
	return code, true
}

func newTestSession() *Session {
	s := New(Config{}, log.New(os.Stderr, "[session] ", 0))
	n := 0
	s.newLobbyID = func() string {
		n++
		return fmt.Sprintf("lobby-%d", n)
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	return s
}

// connect opens a peer and binds it to the given identity.
func connect(t *testing.T, s *Session, connID, userID, name string) *fakePeer {
	t.Helper()
	p := &fakePeer{id: connID}
	s.handleOpen(p)
	s.handleMessage(p, raw(t, map[string]any{
		"type":     protocol.TypePlayerConnectionRequest,
		"userId":   userID,
		"username": name,
	}))
	if code, ok := p.lastError(t); ok {
		t.Fatalf("connect %s: unexpected error %s", userID, code)
	}
	return p
}

func raw(t *testing.T, m map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
