package errors

import "fmt"

// OAuth2Error is the wire shape for errors on the HTTP boundary,
// following RFC 6749 §5.2.
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Standard OAuth2 error codes used by the boundary.
const (
	InvalidRequest = "invalid_request"
	InvalidGrant   = "invalid_grant"
	InvalidToken   = "invalid_token"
	AccessDenied   = "access_denied"
	ServerError    = "server_error"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidRequest, Description: description}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidGrant, Description: description}
}

func NewInvalidToken(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidToken, Description: description}
}

func NewAccessDenied(description string) *OAuth2Error {
	return &OAuth2Error{Code: AccessDenied, Description: description}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{Code: ServerError, Description: description}
}
