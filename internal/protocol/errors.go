package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session/game routing.
	ErrGameBusy         = "E_GAME_BUSY"
	ErrUnknownCharacter = "E_UNKNOWN_CHARACTER"
	ErrCharacterTaken   = "E_CHARACTER_TAKEN"

	// Action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrConflict      = "E_CONFLICT"
	ErrStale         = "E_STALE"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrGameBusy:         {},
	ErrUnknownCharacter: {},
	ErrCharacterTaken:   {},
	ErrBadRequest:       {},
	ErrNoResource:       {},
	ErrInvalidTarget:    {},
	ErrRateLimit:        {},
	ErrConflict:         {},
	ErrStale:            {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
