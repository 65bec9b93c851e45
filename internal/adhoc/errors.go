package adhoc

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrForbiddenOperation is returned for text that could modify the store.
	ErrForbiddenOperation = errors.New("forbidden operation")
	// ErrResourceLimitExceeded is returned when a query runs past its timeout or row cap.
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")
	// ErrQuery matches every *QueryError.
	ErrQuery = errors.New("query error")
)

// QueryError carries the store's complaint about a query, stripped of internal detail.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return "query error: " + e.Message
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

var (
	resultCodeSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	filePath         = regexp.MustCompile(`(?:[A-Za-z]:)?[/\\][^\s"'/\\]+(?:[/\\][^\s"']+)+`)
)

// sanitize keeps the first line of a driver message and drops result codes and paths.
func sanitize(err error) string {
	msg := err.Error()
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	msg = resultCodeSuffix.ReplaceAllString(msg, "")
	msg = filePath.ReplaceAllString(msg, "<path>")
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "query failed"
	}
	return msg
}
