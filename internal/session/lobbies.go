package session

import (
	"dungeonsync.gg/internal/protocol"
)

// createLobby seeds a lobby with the calling participant as host. A host
// already in another lobby leaves it first, so membership stays single-valued.
func (s *Session) createLobby(p Peer, name string, maxPlayers int) *opError {
	host, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	if maxPlayers <= 0 {
		maxPlayers = s.cfg.DefaultMaxPlayers
	}

	s.removeFromLobby(host)

	id := s.newLobbyID()
	s.lobbies[id] = &Lobby{
		ID:         id,
		Name:       name,
		HostID:     host.ID,
		MaxPlayers: maxPlayers,
		PlayerIDs:  []string{host.ID},
		Status:     protocol.LobbyWaiting,
		CreatedAt:  s.now(),
	}

	host.LobbyID = id
	host.IsHost = true
	host.Ready = false
	host.Position = s.cfg.SpawnPosition
	host.Rotation = identityQuat()

	p.Subscribe(id)
	s.logf("lobby created: %s %q by %s", id, name, host.ID)
	return nil
}

func (s *Session) deleteLobby(lobbyID string) *opError {
	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return errNotFound("lobby", lobbyID)
	}
	for _, id := range lobby.PlayerIDs {
		if player, ok := s.players[id]; ok && player.LobbyID == lobbyID {
			clearLobbyFields(player)
		}
	}
	delete(s.lobbies, lobbyID)
	return nil
}

func (s *Session) flushLobbies() {
	for _, player := range s.players {
		if player.LobbyID != "" {
			clearLobbyFields(player)
		}
	}
	s.lobbies = map[string]*Lobby{}
}

// joinLobby appends the participant in join order. Over-capacity joins are
// rejected, never truncated.
func (s *Session) joinLobby(p Peer, lobbyID string) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return errNotFound("lobby", lobbyID)
	}
	if player.LobbyID == lobbyID {
		return nil
	}
	if len(lobby.PlayerIDs) >= lobby.MaxPlayers {
		return errLobbyFull(lobbyID)
	}

	s.removeFromLobby(player)
	lobby.PlayerIDs = append(lobby.PlayerIDs, player.ID)

	player.LobbyID = lobbyID
	player.IsHost = false
	player.Ready = false
	player.Position = s.cfg.SpawnPosition
	player.Rotation = identityQuat()

	p.Subscribe(lobbyID)
	return nil
}

func (s *Session) leaveLobby(p Peer, lobbyID string) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	if _, ok := s.lobbies[lobbyID]; !ok {
		return errNotFound("lobby", lobbyID)
	}
	if player.LobbyID != lobbyID {
		return errNotFound("member", player.ID)
	}
	s.removeFromLobby(player)
	return nil
}

// removeFromLobby detaches the participant from whatever lobby it is in,
// re-electing a host or deleting the lobby as needed. No-op when unaffiliated.
func (s *Session) removeFromLobby(player *Participant) {
	lobbyID := player.LobbyID
	if lobbyID == "" {
		return
	}
	wasHost := player.IsHost
	clearLobbyFields(player)

	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return
	}
	lobby.PlayerIDs = removeID(lobby.PlayerIDs, player.ID)

	if len(lobby.PlayerIDs) == 0 {
		delete(s.lobbies, lobbyID)
		s.logf("lobby deleted (empty): %s", lobbyID)
		return
	}
	if wasHost || lobby.HostID == player.ID {
		// Oldest remaining member by join order becomes host.
		lobby.HostID = lobby.PlayerIDs[0]
		if next, ok := s.players[lobby.HostID]; ok {
			next.IsHost = true
		}
		s.logf("lobby %s host re-elected: %s", lobbyID, lobby.HostID)
	}
}

func clearLobbyFields(player *Participant) {
	player.LobbyID = ""
	player.IsHost = false
	player.Ready = false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// memberOf resolves the calling participant and checks lobby membership.
func (s *Session) memberOf(p Peer, lobbyID string) (*Participant, *Lobby, *opError) {
	player, err := s.boundPlayer(p)
	if err != nil {
		return nil, nil, err
	}
	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, nil, errNotFound("lobby", lobbyID)
	}
	if player.LobbyID != lobbyID {
		return nil, nil, errNotFound("member", player.ID)
	}
	return player, lobby, nil
}

func (s *Session) setReady(p Peer, lobbyID string, value bool) *opError {
	player, _, err := s.memberOf(p, lobbyID)
	if err != nil {
		return err
	}
	player.Ready = value
	return nil
}

func (s *Session) selectCharacter(p Peer, lobbyID, character, characterName, weapon string) *opError {
	player, _, err := s.memberOf(p, lobbyID)
	if err != nil {
		return err
	}
	player.Character = character
	player.CharacterName = characterName
	player.Weapon = weapon
	return nil
}

// startGame transitions waiting -> playing and announces GAME_STARTED.
func (s *Session) startGame(lobbyID string) *opError {
	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return errNotFound("lobby", lobbyID)
	}
	lobby.Status = protocol.LobbyPlaying
	for _, id := range lobby.PlayerIDs {
		if player, ok := s.players[id]; ok && player.Status != protocol.StatusOffline {
			player.Status = protocol.StatusInGame
		}
	}
	s.broadcast(protocol.GameStartedMsg{
		Type:    protocol.TypeGameStarted,
		LobbyID: lobbyID,
	})
	return nil
}

// pauseGame returns to waiting and clears every member's ready flag, forcing
// re-confirmation before the next start.
func (s *Session) pauseGame(lobbyID string) *opError {
	lobby, ok := s.lobbies[lobbyID]
	if !ok {
		return errNotFound("lobby", lobbyID)
	}
	lobby.Status = protocol.LobbyWaiting
	for _, id := range lobby.PlayerIDs {
		if player, ok := s.players[id]; ok {
			player.Ready = false
			if player.Status == protocol.StatusInGame {
				player.Status = protocol.StatusLobby
			}
		}
	}
	return nil
}
