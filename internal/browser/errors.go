package browser

import "fmt"

// SessionError reports a browser-automation failure. Failures while
// inspecting a single card are contained by the caller; the card is skipped
// and enumeration continues.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session failed during %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
