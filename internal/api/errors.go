package api

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes of the pull request calls
var (
	ErrNotAuthenticated  = errors.New("not authenticated - run 'gh auth login' first")
	ErrNotFound          = errors.New("pull request not found")
	ErrAutoMergeDisabled = errors.New("auto-merge is not allowed in this repository")
	ErrAlreadyMergeable  = errors.New("pull request can already be merged, so auto-merge cannot be enabled")
)

// GraphQL and HTTP error text mapped to a failure class, first match wins.
var errorClasses = []struct {
	class   error
	markers []string
}{
	{ErrNotFound, []string{"Could not resolve", "NOT_FOUND"}},
	{ErrNotAuthenticated, []string{"401", "Bad credentials", "authentication", "not authenticated"}},
	{ErrAutoMergeDisabled, []string{"Auto merge is not allowed", "auto-merge is not allowed"}},
	{ErrAlreadyMergeable, []string{"clean status"}},
}

// APIError records which pull request call failed and on what.
type APIError struct {
	Operation string
	Resource  string
	Err       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classify returns the failure class of err, or nil if it has none.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.class) {
			return c.class
		}
	}
	msg := err.Error()
	for _, c := range errorClasses {
		for _, m := range c.markers {
			if strings.Contains(msg, m) {
				return c.class
			}
		}
	}
	return nil
}

// IsNotFound reports whether err means the pull request does not exist or is not visible.
func IsNotFound(err error) bool {
	return classify(err) == ErrNotFound
}

// IsAuthError reports whether err means gh's credentials were missing or rejected.
func IsAuthError(err error) bool {
	return classify(err) == ErrNotAuthenticated
}

// WrapError attaches the operation and resource to err. Recognized failures
// also match their class with errors.Is; the underlying error is kept.
func WrapError(operation, resource string, err error) error {
	if err == nil {
		return nil
	}

	cause := err
	if class := classify(err); class != nil && !errors.Is(err, class) {
		cause = fmt.Errorf("%w: %w", class, err)
	}

	return &APIError{Operation: operation, Resource: resource, Err: cause}
}
