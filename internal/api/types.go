package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MergeMethod represents the GitHub PullRequestMergeMethod enum
type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "MERGE"
	MergeMethodSquash MergeMethod = "SQUASH"
	MergeMethodRebase MergeMethod = "REBASE"
)

// PullRequest identifies a pull request in a repository
type PullRequest struct {
	ID     string
	Host   string
	Owner  string
	Repo   string
	Number int
	URL    string
}

// ParsePullRequestURL parses a URL of the form
// https://github.com/owner/repo/pull/123 as printed by `gh pr create`.
func ParsePullRequestURL(raw string) (*PullRequest, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pull request URL: %w", err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if parsed.Host == "" || len(parts) != 4 || parts[2] != "pull" {
		return nil, fmt.Errorf("not a pull request URL: %s", raw)
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %s", parts[3])
	}

	return &PullRequest{
		Host:   parsed.Host,
		Owner:  parts[0],
		Repo:   parts[1],
		Number: number,
		URL:    parsed.String(),
	}, nil
}
