package response

// Business status codes
const (
	CodeSuccess = 0
	CodeError   = 1

	// Auth errors 100xx
	ErrAuthFailed   = 10001
	ErrTokenInvalid = 10002
	ErrNoPermission = 10003

	// Federation object errors 200xx
	ErrMalformedObject    = 20001
	ErrMissingCreator     = 20002
	ErrNoCommunityFound   = 20003
	ErrAudienceMismatch   = 20004
	ErrDereferenceFailed  = 20005
	ErrUnknownActivity    = 20006

	// Vote errors 300xx
	ErrDownvotesDisabled    = 30001
	ErrPostNotFound         = 30002
	ErrActorBanned          = 30003
	ErrCommunityUnavailable = 30004
	ErrVoteWriteFailed      = 30005

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
