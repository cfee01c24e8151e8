package api

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "sentinel", err: ErrNotFound, expected: ErrNotFound},
		{name: "wrapped sentinel", err: &APIError{Err: ErrNotAuthenticated}, expected: ErrNotAuthenticated},
		{name: "graphql not found", err: errors.New("GraphQL: Could not resolve to a PullRequest with the number of 42."), expected: ErrNotFound},
		{name: "401", err: errors.New("HTTP 401: Bad credentials"), expected: ErrNotAuthenticated},
		{name: "auto-merge disabled", err: errors.New("GraphQL: Auto merge is not allowed for this repository (enablePullRequestAutoMerge)"), expected: ErrAutoMergeDisabled},
		{name: "clean status", err: errors.New("GraphQL: Pull request is in clean status (enablePullRequestAutoMerge)"), expected: ErrAlreadyMergeable},
		{name: "unrecognized", err: errors.New("some other error"), expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.expected {
				t.Errorf("classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(errors.New("GraphQL: Could not resolve to a Repository")) {
		t.Error("Expected IsNotFound for GraphQL not found")
	}
	if IsNotFound(errors.New("HTTP 401")) {
		t.Error("Expected auth error not to be not-found")
	}
	if IsNotFound(nil) {
		t.Error("Expected IsNotFound to return false for nil")
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(ErrNotAuthenticated) {
		t.Error("Expected IsAuthError to return true for ErrNotAuthenticated")
	}
	if !IsAuthError(errors.New("401 Unauthorized")) {
		t.Error("Expected IsAuthError to return true for 401")
	}
}

func TestWrapError_WithNil(t *testing.T) {
	if err := WrapError("get pull request", "o/r#1", nil); err != nil {
		t.Error("Expected WrapError to return nil for nil error")
	}
}

func TestWrapError_ClassifiesAndKeepsCause(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		class error
	}{
		{name: "not found", cause: errors.New("Could not resolve to a PullRequest"), class: ErrNotFound},
		{name: "auth", cause: errors.New("HTTP 401: Bad credentials"), class: ErrNotAuthenticated},
		{name: "clean status", cause: errors.New("Pull request is in clean status"), class: ErrAlreadyMergeable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError("enable auto-merge", "PR_kw123", tt.cause)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %T", err)
			}
			if !errors.Is(err, tt.class) {
				t.Errorf("Expected errors.Is(%v)", tt.class)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("Expected wrapped error to keep the original cause")
			}
		})
	}
}

func TestWrapError_SentinelNotDoubled(t *testing.T) {
	err := WrapError("get pull request", "o/r#1", ErrNotFound)

	expected := "get pull request o/r#1: pull request not found"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{Operation: "get pull request", Resource: "o/r#1", Err: ErrNotFound}

	if !errors.Is(err, ErrNotFound) {
		t.Error("Expected errors.Is to find ErrNotFound")
	}
}
