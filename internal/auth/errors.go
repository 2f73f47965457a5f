package auth

// UnauthorizedError is returned whenever a request carries no valid identity
// for the operation it attempts.
type UnauthorizedError struct{}

func NewUnauthorizedError() *UnauthorizedError {
	return &UnauthorizedError{}
}

func (v UnauthorizedError) Error() string {
	return "not authorized"
}
