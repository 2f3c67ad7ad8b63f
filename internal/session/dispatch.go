package session

import (
	"encoding/json"
	"fmt"

	"dungeonsync.gg/internal/protocol"
)

// opError is a failed store operation, surfaced to the sender as an
// outbound ERROR message instead of a silent drop.
type opError struct {
	Code    string
	Context string
}

func (e *opError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Context) }

func errUnbound(connID string) *opError {
	return &opError{Code: protocol.ErrUnboundConnection, Context: "no identity bound to connection " + connID}
}

func errNotFound(what, id string) *opError {
	return &opError{Code: protocol.ErrNotFound, Context: what + " not found: " + id}
}

func errLobbyFull(id string) *opError {
	return &opError{Code: protocol.ErrLobbyFull, Context: "lobby full: " + id}
}

func errBadValue(context string) *opError {
	return &opError{Code: protocol.ErrBadValue, Context: context}
}

func errBadRequest(msgType string, err error) *opError {
	return &opError{Code: protocol.ErrBadRequest, Context: fmt.Sprintf("decode %s: %v", msgType, err)}
}

// handlerFunc mutates the session stores for one message. suppress reports
// that the dispatcher must skip the full-state broadcast (reserved for
// high-frequency or already-targeted updates).
type handlerFunc func(p Peer, raw []byte) (suppress bool, err *opError)

// handlerTable is the fixed message-type -> handler mapping. Unknown types
// never reach these; the loop logs and drops them.
func (s *Session) handlerTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		protocol.TypePlayerConnectionRequest: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.PlayerConnectionRequestMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypePlayerConnectionRequest, err)
			}
			return false, s.bindPlayer(p, msg.UserID, msg.Username)
		},
		protocol.TypePlayerDisconnectionRequest: func(p Peer, _ []byte) (bool, *opError) {
			userID, ok := s.peerToUser[p.ID()]
			if !ok {
				return false, errUnbound(p.ID())
			}
			s.unbind(p.ID(), userID)
			// unbind already broadcast the departure and a snapshot.
			return true, nil
		},
		protocol.TypeCreateLobby: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.CreateLobbyMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeCreateLobby, err)
			}
			return false, s.createLobby(p, msg.LobbyName, msg.MaxPlayers)
		},
		protocol.TypeDeleteLobby: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.DeleteLobbyMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeDeleteLobby, err)
			}
			return false, s.deleteLobby(msg.LobbyID)
		},
		protocol.TypeJoinLobbyRequest: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.JoinLobbyRequestMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeJoinLobbyRequest, err)
			}
			return false, s.joinLobby(p, msg.LobbyID)
		},
		protocol.TypeLeaveLobby: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.LeaveLobbyMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeLeaveLobby, err)
			}
			return false, s.leaveLobby(p, msg.LobbyID)
		},
		protocol.TypeFlushLobbies: func(_ Peer, _ []byte) (bool, *opError) {
			s.flushLobbies()
			return false, nil
		},
		protocol.TypePlayerReady: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.PlayerReadyMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypePlayerReady, err)
			}
			return false, s.setReady(p, msg.LobbyID, msg.Value)
		},
		protocol.TypeStartGame: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.GameLifecycleMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeStartGame, err)
			}
			return false, s.startGame(msg.LobbyID)
		},
		protocol.TypePauseGame: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.GameLifecycleMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypePauseGame, err)
			}
			return false, s.pauseGame(msg.LobbyID)
		},
		protocol.TypeSelectCharacter: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.SelectCharacterMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeSelectCharacter, err)
			}
			return false, s.selectCharacter(p, msg.LobbyID, msg.Character, msg.CharacterName, msg.Weapon)
		},
		protocol.TypeUpdatePlayerPosition: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.UpdatePlayerPositionMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeUpdatePlayerPosition, err)
			}
			return true, s.updatePosition(p, msg.Position)
		},
		protocol.TypeUpdatePlayerRotation: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.UpdatePlayerRotationMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeUpdatePlayerRotation, err)
			}
			return true, s.updateRotation(p, msg.Rotation)
		},
		protocol.TypeUpdatePlayerState: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.UpdatePlayerStateMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeUpdatePlayerState, err)
			}
			return true, s.updateMovementState(p, msg.State)
		},
		protocol.TypeUpdatePlayerStatus: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.UpdatePlayerStatusMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return false, errBadRequest(protocol.TypeUpdatePlayerStatus, err)
			}
			return false, s.updateStatus(p, msg.Status)
		},
		protocol.TypeUpdateItemState: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.UpdateItemStateMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeUpdateItemState, err)
			}
			return true, s.updateItem(p, msg)
		},
		protocol.TypeDiceRollStart: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.DiceRollStartMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeDiceRollStart, err)
			}
			return true, s.startRoll(p, msg.Args)
		},
		protocol.TypeDiceRollResult: func(p Peer, raw []byte) (bool, *opError) {
			var msg protocol.DiceRollResultMsg
			if err := json.Unmarshal(raw, &msg); err != nil {
				return true, errBadRequest(protocol.TypeDiceRollResult, err)
			}
			return true, s.resolveRoll(p, msg.RollOutcome)
		},
		protocol.TypeDiceRollClose: func(p Peer, _ []byte) (bool, *opError) {
			return true, s.closeRoll(p)
		},
	}
}
