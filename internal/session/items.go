package session

import (
	"dungeonsync.gg/internal/protocol"
)

// SeedItems installs the interactive objects for the loaded level. Meant to
// be called once at startup, before Run.
func (s *Session) SeedItems(items []WorldItem) {
	for i := range items {
		it := items[i]
		if it.State == nil {
			it.State = map[string]any{}
		}
		s.items[it.ID] = &it
	}
}

// updateItem merges a participant's interaction into the shared item record
// and relays it to every connection. The server applies no item-specific
// business rules; whoever mutates last wins.
func (s *Session) updateItem(p Peer, msg protocol.UpdateItemStateMsg) *opError {
	player, err := s.boundPlayer(p)
	if err != nil {
		return err
	}
	item, ok := s.items[msg.ItemID]
	if !ok {
		return errNotFound("item", msg.ItemID)
	}

	if msg.Position != nil {
		if !finite3(*msg.Position) {
			return errBadValue("item position components must be finite")
		}
		item.Position = *msg.Position
	}
	for k, v := range msg.State {
		item.State[k] = v
	}

	s.broadcast(protocol.ItemStateUpdateMsg{
		Type:     protocol.TypeItemStateUpdate,
		ItemID:   item.ID,
		ItemType: item.Type,
		State:    item.State,
		Position: msg.Position,
		PlayerID: player.ID,
	})
	return nil
}
