package bump

import (
	"regexp"
	"strings"
)

// Request describes one bump: the commit being pinned, its checksum, and the
// commit it replaces.
type Request struct {
	NewCommit string
	NewSHA2   string
	OldCommit string
	Branch    string
	Message   string
}

// ShortCommit returns the first 8 characters of a commit hash.
func ShortCommit(commit string) string {
	if len(commit) <= 8 {
		return commit
	}
	return commit[:8]
}

// BranchName returns the Omicron branch for a bump to commit.
func BranchName(prefix, commit string) string {
	return prefix + ShortCommit(commit)
}

// Title returns the PR title and commit subject.
func (r Request) Title() string {
	if r.Message == "" {
		return PRTitle
	}
	return PRTitle + " (" + r.Message + ")"
}

// Body returns the PR description and commit body. commits may be empty.
func (r Request) Body(compareURL, commits string) string {
	body := "Changes: " + compareURL
	if commits != "" {
		body += "\n\n" + commits
	}
	return body
}

var (
	// matches `git log --graph --oneline` lines: graph prefix, short sha, subject
	logLineRe  = regexp.MustCompile(`^([*|/\\ ]*)([0-9a-f]{7,40}) (.*)$`)
	issueRefRe = regexp.MustCompile(`(^|[^\w/])#(\d+)\b`)
)

// LinkifyLog rewrites git log lines for display in another repository's PR:
// short hashes become links to the commit and bare #123 references are
// qualified with repo so they do not resolve against the PR's repository.
func LinkifyLog(log, repo string, commitURL func(sha string) string) string {
	if log == "" {
		return ""
	}

	lines := strings.Split(log, "\n")
	for i, line := range lines {
		m := logLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		prefix, sha, subject := m[1], m[2], m[3]
		subject = issueRefRe.ReplaceAllString(subject, "${1}"+repo+"#${2}")
		lines[i] = prefix + "[" + sha + "](" + commitURL(sha) + ") " + subject
	}
	return strings.Join(lines, "\n")
}
