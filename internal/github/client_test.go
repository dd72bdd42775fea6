package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// graphqlServer fakes the GitHub GraphQL endpoint with a canned response.
func graphqlServer(t *testing.T, status int, body string, capture *graphqlRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("")
	if c.Endpoint != DefaultEndpoint {
		t.Fatalf("endpoint = %q", c.Endpoint)
	}
	if c.HTTPClient == nil || c.HTTPClient.Timeout == 0 {
		t.Fatal("default http client must carry a timeout")
	}
}

func TestTotalCommits_Success(t *testing.T) {
	var req graphqlRequest
	srv := graphqlServer(t, http.StatusOK,
		`{"data":{"user":{"contributionsCollection":{"totalCommitContributions":1234}}}}`, &req)
	defer srv.Close()

	c := NewClient(srv.URL)
	total, err := c.TotalCommits(context.Background(), "octocat", "tok")
	if err != nil {
		t.Fatalf("TotalCommits: %v", err)
	}
	if total != 1234 {
		t.Fatalf("total = %d", total)
	}
	if req.Variables["username"] != "octocat" {
		t.Fatalf("username variable = %q", req.Variables["username"])
	}
	if !strings.Contains(req.Query, "totalCommitContributions") {
		t.Fatalf("unexpected query: %s", req.Query)
	}
}

func TestTotalCommits_NonOKStatus(t *testing.T) {
	srv := graphqlServer(t, http.StatusBadGateway, `{}`, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.TotalCommits(context.Background(), "octocat", "tok"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestTotalCommits_GraphQLErrors(t *testing.T) {
	srv := graphqlServer(t, http.StatusOK,
		`{"data":{"user":null},"errors":[{"message":"bad credentials"}]}`, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.TotalCommits(context.Background(), "octocat", "tok")
	if err == nil || !strings.Contains(err.Error(), "bad credentials") {
		t.Fatalf("expected graphql error, got %v", err)
	}
}

func TestTotalCommits_UnknownUser(t *testing.T) {
	srv := graphqlServer(t, http.StatusOK, `{"data":{"user":null}}`, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.TotalCommits(context.Background(), "nobody", "tok")
	if err == nil || !strings.Contains(err.Error(), "nobody") {
		t.Fatalf("expected unknown-user error, got %v", err)
	}
}

func TestTotalCommits_MalformedBody(t *testing.T) {
	srv := graphqlServer(t, http.StatusOK, `{not json`, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.TotalCommits(context.Background(), "octocat", "tok"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTotalCommits_NilHTTPClientFallsBack(t *testing.T) {
	srv := graphqlServer(t, http.StatusOK,
		`{"data":{"user":{"contributionsCollection":{"totalCommitContributions":7}}}}`, nil)
	defer srv.Close()

	c := &Client{Endpoint: srv.URL}
	total, err := c.TotalCommits(context.Background(), "octocat", "tok")
	if err != nil || total != 7 {
		t.Fatalf("TotalCommits = %d, %v", total, err)
	}
}
