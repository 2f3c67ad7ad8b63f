package protocol

// Player is the wire form of a participant, as embedded in outbound messages.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`

	LobbyID string `json:"lobbyId,omitempty"`
	IsHost  bool   `json:"isHost"`
	Ready   bool   `json:"ready"`

	Character     string `json:"character,omitempty"`
	CharacterName string `json:"characterName,omitempty"`
	Weapon        string `json:"weapon,omitempty"`

	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`

	IsMoving          bool   `json:"isMoving"`
	MovementDirection string `json:"movementDirection,omitempty"`
	IsRunning         bool   `json:"isRunning"`
	IsJumping         bool   `json:"isJumping"`
	IsGrounded        bool   `json:"isGrounded"`
}

// Lobby is the wire form of a lobby. Membership is id-based; Players is the
// resolved view joined from the canonical participant records at send time.
type Lobby struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HostID     string   `json:"hostId"`
	HostName   string   `json:"hostName"`
	PlayerIDs  []string `json:"playerIds"`
	Players    []Player `json:"players"`
	MaxPlayers int      `json:"maxPlayers"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"createdAt"`
}

// WorldItem is the wire form of a shared interactive object (chest, door, ...).
type WorldItem struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position [3]float64     `json:"position"`
	Rotation *[3]float64    `json:"rotation,omitempty"`
	State    map[string]any `json:"state"`
}

// CONNECTION_ESTABLISHED (server -> peer)
type ConnectionEstablishedMsg struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	PeerID  string `json:"peerId"`
}

// PLAYER_CONNECTION_RESPONSE (server -> peer)
type PlayerConnectionResponseMsg struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// PLAYER_DISCONNECTED (server -> all)
type PlayerDisconnectedMsg struct {
	Type    string   `json:"type"`
	UserID  string   `json:"userId"`
	Players []Player `json:"players"`
}

// GAME_STARTED (server -> all)
type GameStartedMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// PLAYER_UPDATE (server -> all)
type PlayerUpdateMsg struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

// SYNC_STATE (server -> all): the full snapshot.
type SyncStateMsg struct {
	Type    string               `json:"type"`
	Lobbies []Lobby              `json:"lobbies"`
	Players []Player             `json:"players"`
	Items   map[string]WorldItem `json:"items"`
}

// ITEM_STATE_UPDATE (server -> all)
type ItemStateUpdateMsg struct {
	Type     string         `json:"type"`
	ItemID   string         `json:"itemId"`
	ItemType string         `json:"itemType"`
	State    map[string]any `json:"state,omitempty"`
	Position *[3]float64    `json:"position,omitempty"`
	PlayerID string         `json:"playerId"`
}

// DICE_ROLL_START (server -> all)
type DiceRollStartBroadcast struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"playerId"`
	Args     RollArgs `json:"args"`
}

// DICE_ROLL_RESULT (server -> all)
type DiceRollResultBroadcast struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	RollOutcome
}

// DICE_ROLL_CLOSE (server -> all)
type DiceRollCloseBroadcast struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// ERROR (server -> peer)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Context string `json:"context,omitempty"`
}
