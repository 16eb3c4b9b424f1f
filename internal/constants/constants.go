package constants

const (
	MaxPlayersPerRoom  = 16
	MaxBotsPerRoom     = 4
	DefaultGridSize    = 4
	DefaultTimerSecs   = 180
	DefaultMinWordLen  = 2
	MaxWordLength      = 16
	MaxUsernameLength  = 24
	MaxRoomNameLength  = 48
	RoomCodeLength     = 6
	PendingVoteQuorum  = 2
	ComboLevelCap      = 10
	ComboWindowBaseMs  = 3000
	ComboWindowStepMs  = 1000
	ComboWindowMaxMs   = 10000
)

// Error codes surfaced to clients.
const (
	ErrCodeGameNotFound      = "GAME_NOT_FOUND"
	ErrCodeGameAlreadyExists = "GAME_ALREADY_EXISTS"
	ErrCodeGameFull          = "GAME_FULL"
	ErrCodeGameInProgress    = "GAME_IN_PROGRESS"
	ErrCodeNotHost           = "NOT_HOST"
	ErrCodeInvalidPayload    = "INVALID_PAYLOAD"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeAuthRequired      = "AUTH_REQUIRED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Word rejection reasons.
const (
	RejectAlreadyFound = "alreadyFound"
	RejectTooShort     = "tooShort"
	RejectNotOnBoard   = "notOnBoard"
	RejectNotStarted   = "notStarted"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)
