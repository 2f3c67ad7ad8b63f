package protocol

// PLAYER_CONNECTION_REQUEST (client -> server)
type PlayerConnectionRequestMsg struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// PLAYER_DISCONNECTION_REQUEST (client -> server)
type PlayerDisconnectionRequestMsg struct {
	Type string `json:"type"`
}

// CREATE_LOBBY (client -> server)
type CreateLobbyMsg struct {
	Type       string `json:"type"`
	LobbyName  string `json:"lobbyName"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

// DELETE_LOBBY (client -> server)
type DeleteLobbyMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// JOIN_LOBBY_REQUEST (client -> server)
type JoinLobbyRequestMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// LEAVE_LOBBY (client -> server)
type LeaveLobbyMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// FLUSH_LOBBIES (client -> server)
type FlushLobbiesMsg struct {
	Type string `json:"type"`
}

// PLAYER_READY (client -> server)
type PlayerReadyMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
	Value   bool   `json:"value"`
}

// START_GAME / PAUSE_GAME (client -> server)
type GameLifecycleMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
}

// SELECT_CHARACTER (client -> server)
type SelectCharacterMsg struct {
	Type          string `json:"type"`
	LobbyID       string `json:"lobbyId"`
	CharacterName string `json:"characterName"`
	Character     string `json:"character"`
	Weapon        string `json:"weapon,omitempty"`
}

// UPDATE_PLAYER_POSITION (client -> server)
type UpdatePlayerPositionMsg struct {
	Type     string     `json:"type"`
	LobbyID  string     `json:"lobbyId"`
	Position [3]float64 `json:"position"`
}

// UPDATE_PLAYER_ROTATION (client -> server)
type UpdatePlayerRotationMsg struct {
	Type     string     `json:"type"`
	LobbyID  string     `json:"lobbyId"`
	Rotation [4]float64 `json:"rotation"`
}

// MovementPatch is a partial update of a participant's movement flags.
// Only fields present in the payload are applied; nil means "leave as is".
type MovementPatch struct {
	IsMoving          *bool   `json:"isMoving,omitempty"`
	MovementDirection *string `json:"movementDirection,omitempty"`
	IsRunning         *bool   `json:"isRunning,omitempty"`
	IsJumping         *bool   `json:"isJumping,omitempty"`
	IsGrounded        *bool   `json:"isGrounded,omitempty"`
}

// UPDATE_PLAYER_STATE (client -> server)
type UpdatePlayerStateMsg struct {
	Type    string        `json:"type"`
	LobbyID string        `json:"lobbyId"`
	State   MovementPatch `json:"state"`
}

// UPDATE_PLAYER_STATUS (client -> server)
type UpdatePlayerStatusMsg struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// UPDATE_ITEM_STATE (client -> server)
type UpdateItemStateMsg struct {
	Type     string         `json:"type"`
	ItemID   string         `json:"itemId"`
	ItemType string         `json:"itemType"`
	State    map[string]any `json:"state,omitempty"`
	Position *[3]float64    `json:"position,omitempty"`
}

// RollModifier is one named bonus or penalty applied to a roll.
type RollModifier struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// SkillCheck names the ability and skill a roll is testing.
type SkillCheck struct {
	Ability string `json:"ability"`
	Skill   string `json:"skill"`
}

// RollArgs describes the roll being presented to every viewer.
type RollArgs struct {
	Title           string         `json:"title,omitempty"`
	Subtitle        string         `json:"subtitle,omitempty"`
	DiceType        string         `json:"diceType"`
	DifficultyClass int            `json:"difficultyClass,omitempty"`
	Modifiers       []RollModifier `json:"modifiers,omitempty"`
	SkillCheck      *SkillCheck    `json:"skillCheck,omitempty"`
}

// DICE_ROLL_START (client -> server)
type DiceRollStartMsg struct {
	Type string   `json:"type"`
	Args RollArgs `json:"args"`
}

// RollOutcome is the initiator-reported result; the server never recomputes it.
type RollOutcome struct {
	Result            int  `json:"result"`
	Success           bool `json:"success"`
	IsCriticalSuccess bool `json:"isCriticalSuccess,omitempty"`
	IsCriticalFailure bool `json:"isCriticalFailure,omitempty"`
}

// DICE_ROLL_RESULT (client -> server)
type DiceRollResultMsg struct {
	Type string `json:"type"`
	RollOutcome
}

// DICE_ROLL_CLOSE (client -> server)
type DiceRollCloseMsg struct {
	Type string `json:"type"`
}
