package api

import (
	"fmt"

	"github.com/cli/go-gh/v2/pkg/api"
)

// GraphQLClient interface allows mocking the GitHub GraphQL client for testing
type GraphQLClient interface {
	Query(name string, query interface{}, variables map[string]interface{}) error
	Mutate(name string, mutation interface{}, variables map[string]interface{}) error
}

// Client wraps the GitHub GraphQL API client with pull request operations
type Client struct {
	gql  GraphQLClient
	opts ClientOptions
}

// ClientOptions configures the API client
type ClientOptions struct {
	// Host is the GitHub hostname (default: github.com)
	Host string
}

// NewClientWithOptions creates an API client using gh's stored credentials
// for opts.Host
func NewClientWithOptions(opts ClientOptions) (*Client, error) {
	apiOpts := api.ClientOptions{}
	if opts.Host != "" {
		apiOpts.Host = opts.Host
	}

	gql, err := api.NewGraphQLClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	return &Client{
		gql:  gql,
		opts: opts,
	}, nil
}

// NewClientWithGraphQL creates a Client with a custom GraphQL client (for testing)
func NewClientWithGraphQL(gql GraphQLClient) *Client {
	return &Client{gql: gql}
}
