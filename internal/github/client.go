// Package github fetches a user's total commit contributions from the GitHub
// GraphQL API. The sync job is the only consumer; it treats every error from
// this package as "no data, try again later", so the client never retries on
// its own.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultEndpoint is the public GitHub GraphQL API endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// commitQuery asks for the authenticated-scope total commit contributions of
// a named user.
const commitQuery = `query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      totalCommitContributions
    }
  }
}`

// CommitFetcher is the capability the sync job depends on. The production
// implementation is Client; tests substitute a stub.
type CommitFetcher interface {
	// TotalCommits returns the cumulative commit contribution count for the
	// GitHub user identified by username, authorized by token.
	TotalCommits(ctx context.Context, username, token string) (int, error)
}

// Client calls the GitHub GraphQL API over HTTP.
type Client struct {
	// Endpoint is the GraphQL URL; defaults to DefaultEndpoint.
	Endpoint string
	// HTTPClient is the underlying transport; defaults to a 10s-timeout client.
	HTTPClient *http.Client
}

// NewClient returns a Client for the given endpoint ("" selects the public
// GitHub API).
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// graphqlRequest is the POST body for a GraphQL call.
type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

// commitResponse mirrors the slice of the GraphQL response we care about.
// Pointer fields distinguish "user unknown" from a zero contribution count.
type commitResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				TotalCommitContributions int `json:"totalCommitContributions"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// TotalCommits fetches the user's cumulative commit contribution count.
// Network failures, non-2xx statuses, GraphQL errors, and missing users are
// all reported as errors; the caller decides whether absence is fatal.
func (c *Client) TotalCommits(ctx context.Context, username, token string) (int, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     commitQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return 0, fmt.Errorf("github: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("github: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("github: unexpected status %d", resp.StatusCode)
	}

	var out commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("github: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return 0, fmt.Errorf("github: graphql error: %s", out.Errors[0].Message)
	}
	if out.Data.User == nil {
		return 0, fmt.Errorf("github: user %q not found", username)
	}
	return out.Data.User.ContributionsCollection.TotalCommitContributions, nil
}
