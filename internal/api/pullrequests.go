package api

import (
	"fmt"

	graphql "github.com/cli/shurcooL-graphql"
)

// EnablePullRequestAutoMergeInput represents the input for enabling auto-merge
type EnablePullRequestAutoMergeInput struct {
	PullRequestID graphql.ID  `json:"pullRequestId"`
	MergeMethod   MergeMethod `json:"mergeMethod,omitempty"`
}

// GetPullRequestID returns the node ID of a pull request
func (c *Client) GetPullRequestID(owner, repo string, number int) (string, error) {
	if c.gql == nil {
		return "", fmt.Errorf("GraphQL client not initialized - are you authenticated with gh?")
	}

	var query struct {
		Repository struct {
			PullRequest struct {
				ID string
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner":  graphql.String(owner),
		"repo":   graphql.String(repo),
		"number": graphql.Int(number),
	}

	resource := fmt.Sprintf("%s/%s#%d", owner, repo, number)
	if err := c.gql.Query("GetPullRequestID", &query, variables); err != nil {
		return "", WrapError("get pull request", resource, err)
	}

	if query.Repository.PullRequest.ID == "" {
		return "", &APIError{Operation: "get pull request", Resource: resource, Err: ErrNotFound}
	}

	return query.Repository.PullRequest.ID, nil
}

// EnableAutoMerge sets a pull request to merge once its required checks pass
func (c *Client) EnableAutoMerge(pullRequestID string, method MergeMethod) error {
	if c.gql == nil {
		return fmt.Errorf("GraphQL client not initialized - are you authenticated with gh?")
	}

	var mutation struct {
		EnablePullRequestAutoMerge struct {
			PullRequest struct {
				Number int
			}
		} `graphql:"enablePullRequestAutoMerge(input: $input)"`
	}

	variables := map[string]interface{}{
		"input": EnablePullRequestAutoMergeInput{
			PullRequestID: graphql.ID(pullRequestID),
			MergeMethod:   method,
		},
	}

	if err := c.gql.Mutate("EnablePullRequestAutoMerge", &mutation, variables); err != nil {
		return WrapError("enable auto-merge", pullRequestID, err)
	}

	return nil
}

// EnableAutoMergeForURL resolves a pull request URL printed by `gh pr create`
// and enables auto-merge on it.
func (c *Client) EnableAutoMergeForURL(prURL string, method MergeMethod) error {
	pr, err := ParsePullRequestURL(prURL)
	if err != nil {
		return err
	}

	id, err := c.GetPullRequestID(pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return err
	}

	return c.EnableAutoMerge(id, method)
}
