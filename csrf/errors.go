package csrf

// Code is the stable, machine-readable identifier of a CSRF failure.
type Code string

const (
	CodeMissingToken           Code = "missing_token"
	CodeTokenMismatch          Code = "token_mismatch"
	CodeTokenExpired           Code = "token_expired"
	CodeOriginMismatch         Code = "origin_mismatch"
	CodeReplayDetected         Code = "replay_detected"
	CodeUnsupportedStrategy    Code = "unsupported_strategy"
	CodeConfiguration          Code = "configuration_error"
	CodeReplayStoreUnavailable Code = "replay_store_unavailable"
)

// Error is a typed CSRF failure. Two errors with the same Code match under
// errors.Is regardless of their messages.
type Error struct {
	Code    Code
	Message string
}

var (
	ErrMissingToken           = &Error{Code: CodeMissingToken, Message: "CSRF token is missing"}
	ErrTokenMismatch          = &Error{Code: CodeTokenMismatch, Message: "CSRF token mismatch"}
	ErrTokenExpired           = &Error{Code: CodeTokenExpired, Message: "CSRF token expired"}
	ErrOriginMismatch         = &Error{Code: CodeOriginMismatch, Message: "Origin header mismatch or missing"}
	ErrReplayDetected         = &Error{Code: CodeReplayDetected, Message: "Replay attack detected"}
	ErrUnsupportedStrategy    = &Error{Code: CodeUnsupportedStrategy, Message: "CSRF strategy not supported"}
	ErrConfiguration          = &Error{Code: CodeConfiguration, Message: "Invalid configuration"}
	ErrReplayStoreUnavailable = &Error{Code: CodeReplayStoreUnavailable, Message: "Replay cache unavailable"}
)

// errorf returns a copy of the sentinel for code carrying a specific message.
func errorf(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Map returns the structured {code, message} form used in logs and JSON.
func (e *Error) Map() map[string]string {
	return map[string]string{
		"code":    string(e.Code),
		"message": e.Message,
	}
}
