package session

import (
	"context"
	"encoding/json"

	"dungeonsync.gg/internal/protocol"
)

// Run drains the session channels one message at a time. Every inbound
// message is handled to completion before the next is picked up, so all
// store transitions are linearizable without further locking.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case p := <-s.opened:
			s.handleOpen(p)
		case id := <-s.closed:
			s.handleClose(id)
		case env := <-s.inbox:
			s.handleMessage(env.Peer, env.Data)
		}
	}
}

// handleOpen registers the peer, confirms the connection, and pushes an
// initial snapshot so late joiners are consistent immediately.
func (s *Session) handleOpen(p Peer) {
	s.peers[p.ID()] = p
	p.Subscribe(GlobalTopic)

	s.sendTo(p, protocol.ConnectionEstablishedMsg{
		Type:    protocol.TypeConnectionEstablished,
		Message: "Successfully connected to websocket server",
		PeerID:  p.ID(),
	})
	s.sendTo(p, s.snapshot())
}

// handleClose drops the peer and flips any bound participant to offline.
// The participant record is retained so a reconnect resumes mid-session.
func (s *Session) handleClose(connID string) {
	delete(s.peers, connID)

	userID, ok := s.peerToUser[connID]
	if !ok {
		return
	}
	s.unbind(connID, userID)
}

// unbind detaches a connection from its participant, marks the participant
// offline, and announces the departure.
func (s *Session) unbind(connID, userID string) {
	delete(s.peerToUser, connID)
	if s.userToPeer[userID] == connID {
		delete(s.userToPeer, userID)
	}

	player, ok := s.players[userID]
	if !ok {
		return
	}
	player.Status = protocol.StatusOffline
	s.logf("player disconnected: %s (%s)", userID, player.Name)

	s.broadcast(protocol.PlayerDisconnectedMsg{
		Type:    protocol.TypePlayerDisconnected,
		UserID:  userID,
		Players: s.wirePlayers(),
	})
	s.syncState()
}

func (s *Session) handleMessage(p Peer, raw []byte) {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		s.logf("drop undecodable message from %s: %v", p.ID(), err)
		return
	}

	handler, ok := s.handlers[base.Type]
	if !ok {
		s.logf("unknown message type from %s: %q", p.ID(), base.Type)
		return
	}

	suppress, opErr := handler(p, raw)
	if opErr != nil {
		s.sendTo(p, protocol.ErrorMsg{
			Type:    protocol.TypeError,
			Code:    opErr.Code,
			Context: opErr.Context,
		})
	} else if !suppress {
		s.syncState()
	}

	s.journalEvent(p, base.Type, suppress, opErr)
}

func (s *Session) journalEvent(p Peer, msgType string, suppress bool, opErr *opError) {
	if s.eventLogger == nil {
		return
	}
	entry := EventEntry{
		Time:     s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		ConnID:   p.ID(),
		UserID:   s.peerToUser[p.ID()],
		Type:     msgType,
		Suppress: suppress,
	}
	if opErr != nil {
		entry.ErrorCode = opErr.Code
	}
	if err := s.eventLogger.WriteEvent(entry); err != nil {
		s.logf("event journal: %v", err)
	}
}

func (s *Session) sendTo(p Peer, msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logf("marshal %T: %v", msg, err)
		return
	}
	p.Send(b)
}
