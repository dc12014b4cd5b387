package constants

const (
	// Shared REST/WS transport-agnostic errors
	ErrCodeAuthFailed     = "AUTH_FAILED"
	ErrCodeAuthExpired    = "AUTH_EXPIRED"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

const (
	// IDRandomBytes is the entropy of generated row identifiers.
	IDRandomBytes = 12

	// ResetTokenBytes is the entropy of password reset tokens.
	ResetTokenBytes = 32

	// EntryHistoryDefaultLimit bounds ledger reads when the client does not
	// ask for a specific window.
	EntryHistoryDefaultLimit = 30
	EntryHistoryMaxLimit     = 365

	// NudgeListDefaultLimit bounds undismissed nudge listings.
	NudgeListDefaultLimit = 10
	NudgeListMaxLimit     = 50

	// NotificationsPerUser caps the in-memory notification ring.
	NotificationsPerUser = 50

	// CompletionRateWindowDays is the default completion-rate lookback.
	CompletionRateWindowDays = 30

	// WS buffer sizes
	WSClientSendBufferSize = 64
)
