package auth

// User-facing messages. They are deliberately coarse; detail goes to logs.
const (
	MsgInvalidFields      = "Invalid fields!"
	MsgEmailNotFound      = "Email does not exist!"
	MsgEmailInUse         = "Email already in use!"
	MsgConfirmationSent   = "Confirmation email sent!"
	MsgEmailVerified      = "Email verified!"
	MsgMissingToken       = "Missing token!"
	MsgTokenNotFound      = "Token does not exist!"
	MsgTokenExpired       = "Token has expired!"
	MsgInvalidCode        = "Invalid code!"
	MsgCodeExpired        = "Code has expired!"
	MsgTooManyAttempts    = "Too many attempts!"
	MsgInvalidCredentials = "Invalid credentials!"
	MsgDeliveryFailed     = "Could not send email!"
	MsgSomethingWrong     = "Something went wrong!"
)

// Error is a rejected auth step. Message is safe to show the caller; Err
// wraps a domain sentinel for status mapping and logging.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func reject(msg string, err error) *Error {
	return &Error{Message: msg, Err: err}
}
