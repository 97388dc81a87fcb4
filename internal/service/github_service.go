package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/models"
	"devconnect/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

const (
	githubTimeout  = 10 * time.Second
	githubMaxBytes = 1 << 20
)

// GitHubService proxies the five oldest-created repositories of a GitHub user.
type GitHubService struct {
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

// NewGitHubService builds the lookup client. With a GITHUB_TOKEN configured,
// requests are authenticated through an oauth2 static token source.
func NewGitHubService(cfg *config.Config, c *cache.Cache) *GitHubService {
	client := &http.Client{Timeout: githubTimeout}
	if cfg.GitHubToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken, TokenType: "Bearer"})
		client = oauth2.NewClient(context.Background(), src)
		client.Timeout = githubTimeout
	}
	return &GitHubService{
		client:  client,
		baseURL: strings.TrimRight(cfg.GitHubAPIURL, "/"),
		cache:   c,
	}
}

func errNoGitHub(cause error) error {
	return models.NewUpstreamError("No GitHub profile found", cause)
}

// Repos returns GitHub's JSON for the user's five oldest-created repositories,
// passed through untouched. Results are cached for ten minutes.
func (s *GitHubService) Repos(ctx context.Context, username string) (_ []json.RawMessage, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "GitHubService", "Repos", attribute.String("github.username", username))
	defer func() { span.End(err) }()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errNoGitHub(fmt.Errorf("empty username"))
	}

	var repos []json.RawMessage
	err = s.cache.Aside(ctx, cache.GitHubKey(username), &repos, cache.GitHubTTL, func() error {
		var fetchErr error
		repos, fetchErr = s.fetch(ctx, username)
		return fetchErr
	})
	if err != nil {
		observability.GitHubLookups.WithLabelValues("not_found").Inc()
		return nil, err
	}
	observability.GitHubLookups.WithLabelValues("ok").Inc()
	return repos, nil
}

func (s *GitHubService) fetch(ctx context.Context, username string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc", s.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errNoGitHub(err)
	}
	req.Header.Set("User-Agent", "devconnect-api")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errNoGitHub(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, githubMaxBytes))
		return nil, errNoGitHub(fmt.Errorf("github responded %d", resp.StatusCode))
	}

	repos := []json.RawMessage{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, githubMaxBytes)).Decode(&repos); err != nil {
		return nil, errNoGitHub(err)
	}
	return repos, nil
}
