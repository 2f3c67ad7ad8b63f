package session

import (
	"encoding/json"
	"sort"

	"dungeonsync.gg/internal/protocol"
)

// broadcast serializes once and pushes to every live connection. All lobbies
// go to all peers regardless of membership; correctness over bandwidth.
func (s *Session) broadcast(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logf("marshal %T: %v", msg, err)
		return
	}
	for _, p := range s.peers {
		p.Send(b)
	}
}

// syncState emits the full snapshot to every connection.
func (s *Session) syncState() {
	s.broadcast(s.snapshot())
}

// snapshot assembles the outbound view. Player objects inside lobbies are
// joined from the canonical participant records here, at serialization time.
func (s *Session) snapshot() protocol.SyncStateMsg {
	lobbies := make([]protocol.Lobby, 0, len(s.lobbies))
	for _, lobby := range s.lobbies {
		lobbies = append(lobbies, s.wireLobby(lobby))
	}
	sort.Slice(lobbies, func(i, j int) bool {
		if lobbies[i].CreatedAt != lobbies[j].CreatedAt {
			return lobbies[i].CreatedAt < lobbies[j].CreatedAt
		}
		return lobbies[i].ID < lobbies[j].ID
	})

	items := make(map[string]protocol.WorldItem, len(s.items))
	for id, it := range s.items {
		items[id] = it.wire()
	}

	return protocol.SyncStateMsg{
		Type:    protocol.TypeSyncState,
		Lobbies: lobbies,
		Players: s.wirePlayers(),
		Items:   items,
	}
}

func (s *Session) wireLobby(lobby *Lobby) protocol.Lobby {
	resolved := make([]protocol.Player, 0, len(lobby.PlayerIDs))
	for _, id := range lobby.PlayerIDs {
		if player, ok := s.players[id]; ok {
			resolved = append(resolved, player.wire())
		}
	}
	hostName := ""
	if host, ok := s.players[lobby.HostID]; ok {
		hostName = host.Name
	}
	ids := make([]string, len(lobby.PlayerIDs))
	copy(ids, lobby.PlayerIDs)

	return protocol.Lobby{
		ID:         lobby.ID,
		Name:       lobby.Name,
		HostID:     lobby.HostID,
		HostName:   hostName,
		PlayerIDs:  ids,
		Players:    resolved,
		MaxPlayers: lobby.MaxPlayers,
		Status:     lobby.Status,
		CreatedAt:  lobby.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (s *Session) wirePlayers() []protocol.Player {
	players := make([]protocol.Player, 0, len(s.players))
	for _, player := range s.players {
		players = append(players, player.wire())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}
