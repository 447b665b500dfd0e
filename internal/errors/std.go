package errors

import "errors"

// Is, As and Join re-export the standard library helpers so callers can
// import a single errors package.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)
