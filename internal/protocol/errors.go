package protocol

const (
	// Identity/routing.
	ErrUnboundConnection = "E_UNBOUND_CONNECTION"
	ErrNotFound          = "E_NOT_FOUND"

	// Lobby rules.
	ErrLobbyFull = "E_LOBBY_FULL"

	// Payload validation.
	ErrBadValue   = "E_BAD_VALUE"
	ErrBadRequest = "E_BAD_REQUEST"
)

var knownCodes = map[string]struct{}{
	ErrUnboundConnection: {},
	ErrNotFound:          {},
	ErrLobbyFull:         {},
	ErrBadValue:          {},
	ErrBadRequest:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
