package protocol

import "encoding/json"

// Inbound message types (client -> server).
const (
	TypePlayerConnectionRequest    = "PLAYER_CONNECTION_REQUEST"
	TypePlayerDisconnectionRequest = "PLAYER_DISCONNECTION_REQUEST"
	TypeCreateLobby                = "CREATE_LOBBY"
	TypeDeleteLobby                = "DELETE_LOBBY"
	TypeJoinLobbyRequest           = "JOIN_LOBBY_REQUEST"
	TypeLeaveLobby                 = "LEAVE_LOBBY"
	TypeFlushLobbies               = "FLUSH_LOBBIES"
	TypePlayerReady                = "PLAYER_READY"
	TypeStartGame                  = "START_GAME"
	TypePauseGame                  = "PAUSE_GAME"
	TypeSelectCharacter            = "SELECT_CHARACTER"
	TypeUpdatePlayerPosition       = "UPDATE_PLAYER_POSITION"
	TypeUpdatePlayerRotation       = "UPDATE_PLAYER_ROTATION"
	TypeUpdatePlayerState          = "UPDATE_PLAYER_STATE"
	TypeUpdatePlayerStatus         = "UPDATE_PLAYER_STATUS"
	TypeUpdateItemState            = "UPDATE_ITEM_STATE"
	TypeDiceRollStart              = "DICE_ROLL_START"
	TypeDiceRollResult             = "DICE_ROLL_RESULT"
	TypeDiceRollClose              = "DICE_ROLL_CLOSE"
)

// Outbound message types (server -> clients).
const (
	TypeConnectionEstablished    = "CONNECTION_ESTABLISHED"
	TypePlayerConnectionResponse = "PLAYER_CONNECTION_RESPONSE"
	TypePlayerDisconnected       = "PLAYER_DISCONNECTED"
	TypeGameStarted              = "GAME_STARTED"
	TypePlayerUpdate             = "PLAYER_UPDATE"
	TypeSyncState                = "SYNC_STATE"
	TypeItemStateUpdate          = "ITEM_STATE_UPDATE"
	TypeError                    = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Participant status values.
const (
	StatusOffline = "offline"
	StatusLobby   = "lobby"
	StatusInGame  = "in-game"
)

// Lobby lifecycle values.
const (
	LobbyWaiting = "waiting"
	LobbyPlaying = "playing"
)
