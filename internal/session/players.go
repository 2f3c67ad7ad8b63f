package session

import (
	"math"

	"dungeonsync.gg/internal/protocol"
)

// bindPlayer maps the connection to a stable participant identity. Rebinding
// an existing user id reuses the record, so reconnects keep position,
// character, and lobby membership.
func (s *Session) bindPlayer(p Peer, userID, username string) *opError {
	if userID == "" {
		return errBadValue("userId must not be empty")
	}

	player, ok := s.players[userID]
	if !ok {
		player = &Participant{
			ID:       userID,
			Name:     username,
			Status:   protocol.StatusLobby,
			Position: s.cfg.SpawnPosition,
			Rotation: identityQuat(),
		}
		s.players[userID] = player
	} else {
		if username != "" {
			player.Name = username
		}
		if player.Status == protocol.StatusOffline {
			player.Status = protocol.StatusLobby
		}
	}

	// A stale connection bound to the same user loses the binding; the
	// newest connection wins.
	if old, ok := s.userToPeer[userID]; ok && old != p.ID() {
		delete(s.peerToUser, old)
	}
	s.peerToUser[p.ID()] = userID
	s.userToPeer[userID] = p.ID()

	s.logf("player connected: %s - %s - %s", p.ID(), userID, player.Name)

	s.sendTo(p, protocol.PlayerConnectionResponseMsg{
		Type:   protocol.TypePlayerConnectionResponse,
		Player: player.wire(),
	})
	return nil
}

// boundPlayer resolves the calling connection to its participant record.
// Identity is always looked up through the binding, never from the payload.
func (s *Session) boundPlayer(p Peer) (*Participant, *opError) {
	userID, ok := s.peerToUser[p.ID()]
	if !ok {
		return nil, errUnbound(p.ID())
	}
	player, ok := s.players[userID]
	if !ok {
		return nil, errNotFound("participant", userID)
	}
	return player, nil
}

func finite3(v [3]float64) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func finite4(v [4]float64) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// updatePosition replaces the participant's position. Non-finite components
// reject the whole update; the prior position is retained.
func (s *Session) updatePosition(p Peer, pos [3]float64) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	if !finite3(pos) {
		return errBadValue("position components must be finite")
	}
	player.Position = pos
	s.broadcastPlayerUpdate(player)
	return nil
}

func (s *Session) updateRotation(p Peer, rot [4]float64) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	if !finite4(rot) {
		return errBadValue("rotation components must be finite")
	}
	player.Rotation = rot
	s.broadcastPlayerUpdate(player)
	return nil
}

// updateMovementState merges only the fields present in the patch. Absent
// fields keep their prior values.
func (s *Session) updateMovementState(p Peer, patch protocol.MovementPatch) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	if patch.IsMoving != nil {
		player.IsMoving = *patch.IsMoving
	}
	if patch.MovementDirection != nil {
		player.MovementDirection = *patch.MovementDirection
	}
	if patch.IsRunning != nil {
		player.IsRunning = *patch.IsRunning
	}
	if patch.IsJumping != nil {
		player.IsJumping = *patch.IsJumping
	}
	if patch.IsGrounded != nil {
		player.IsGrounded = *patch.IsGrounded
	}
	s.broadcastPlayerUpdate(player)
	return nil
}

func (s *Session) updateStatus(p Peer, status string) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	switch status {
	case protocol.StatusOffline, protocol.StatusLobby, protocol.StatusInGame:
	default:
		return errBadValue("unknown status: " + status)
	}
	player.Status = status
	return nil
}

func (s *Session) broadcastPlayerUpdate(player *Participant) {
	s.broadcast(protocol.PlayerUpdateMsg{
		Type:   protocol.TypePlayerUpdate,
		Player: player.wire(),
	})
}
