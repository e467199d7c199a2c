package client

import "fmt"

// RetrievalError reports a page or asset fetch that failed with a transport
// error or a non-2xx status.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to retrieve %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to retrieve %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
