package errors

// Domain errors, in the order the dispatcher checks them so that error
// messages stay deterministic.
var (
	ErrSenderRequired     = InvalidArg("sender id must be a positive integer")
	ErrSenderOutOfRange   = InvalidArg("sender id must be at most nine digits")
	ErrReceiverRequired   = InvalidArg("receiver id must be a positive integer")
	ErrReceiverOutOfRange = InvalidArg("receiver id must be at most nine digits")
	ErrRoomInvalid        = InvalidArg("room must be a non-negative integer")
	ErrContentRequired    = InvalidArg("content is required")
	ErrContentTooLong     = InvalidArg("content must be at most 2000 characters")

	ErrRoomNotFound = NotFound("room not found")

	ErrTokenRequired = Unauthorized("missing credential")
	ErrTokenExpired  = Unauthorized("credential expired")
	ErrTokenInvalid  = Unauthorized("invalid credential")
	ErrUserNotFound  = Unauthorized("user not found")

	ErrCannotSave = Internal("cannot save message")
)
