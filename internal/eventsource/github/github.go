// Package github implements eventsource.Adapter over the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dapplion/review-royale/internal/eventsource"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
	maxPages       = 50
)

// Client calls the GitHub REST API with a personal access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// New creates a new GitHub adapter. baseURL is for API proxies and
// tests; empty means api.github.com.
func New(token, baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type apiUser struct {
	Login string `json:"login"`
}

type apiPullRequest struct {
	Number    int        `json:"number"`
	User      apiUser    `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

type apiCommit struct {
	SHA    string `json:"sha"`
	Author *apiUser `json:"author"`
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

type apiReview struct {
	ID          int64     `json:"id"`
	User        apiUser   `json:"user"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type apiReviewComment struct {
	ID        int64     `json:"id"`
	User      apiUser   `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ListPullRequests returns pull requests updated at or after since.
// GitHub has no updated-since filter on the list endpoint, so we page
// through sort=updated desc and stop at the first stale page.
func (c *Client) ListPullRequests(ctx context.Context, owner, name string, since time.Time) ([]eventsource.PullRequest, error) {
	var out []eventsource.PullRequest

	for page := 1; page <= maxPages; page++ {
		path := fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(owner), url.PathEscape(name))
		q := url.Values{
			"state":     {"all"},
			"sort":      {"updated"},
			"direction": {"desc"},
			"per_page":  {strconv.Itoa(perPage)},
			"page":      {strconv.Itoa(page)},
		}

		var items []apiPullRequest
		if err := c.get(ctx, path+"?"+q.Encode(), &items); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}

		stale := false
		for _, pr := range items {
			if pr.UpdatedAt.Before(since) {
				stale = true
				continue
			}
			out = append(out, eventsource.PullRequest{
				Number:    pr.Number,
				Author:    pr.User.Login,
				CreatedAt: pr.CreatedAt,
				UpdatedAt: pr.UpdatedAt,
				MergedAt:  pr.MergedAt,
			})
		}
		if stale || len(items) < perPage {
			break
		}
	}

	return out, nil
}

// ListCommits returns the commits on a pull request branch.
func (c *Client) ListCommits(ctx context.Context, owner, name string, number int) ([]eventsource.Commit, error) {
	var out []eventsource.Commit

	err := c.paginate(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/commits", url.PathEscape(owner), url.PathEscape(name), number),
		func(body io.Reader) (int, error) {
			var items []apiCommit
			if err := json.NewDecoder(body).Decode(&items); err != nil {
				return 0, err
			}
			for _, commit := range items {
				login := ""
				if commit.Author != nil {
					login = commit.Author.Login
				}
				out = append(out, eventsource.Commit{
					SHA:         commit.SHA,
					Author:      login,
					CommittedAt: commit.Commit.Committer.Date,
				})
			}
			return len(items), nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReviews returns submitted reviews on a pull request.
func (c *Client) ListReviews(ctx context.Context, owner, name string, number int) ([]eventsource.Review, error) {
	var out []eventsource.Review

	err := c.paginate(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", url.PathEscape(owner), url.PathEscape(name), number),
		func(body io.Reader) (int, error) {
			var items []apiReview
			if err := json.NewDecoder(body).Decode(&items); err != nil {
				return 0, err
			}
			for _, review := range items {
				// PENDING reviews have no submission time yet.
				if review.SubmittedAt.IsZero() {
					continue
				}
				out = append(out, eventsource.Review{
					ID:          review.ID,
					Actor:       review.User.Login,
					State:       review.State,
					Body:        review.Body,
					SubmittedAt: review.SubmittedAt,
				})
			}
			return len(items), nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReviewComments returns inline review comments on a pull request.
func (c *Client) ListReviewComments(ctx context.Context, owner, name string, number int) ([]eventsource.ReviewComment, error) {
	var out []eventsource.ReviewComment

	err := c.paginate(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d/comments", url.PathEscape(owner), url.PathEscape(name), number),
		func(body io.Reader) (int, error) {
			var items []apiReviewComment
			if err := json.NewDecoder(body).Decode(&items); err != nil {
				return 0, err
			}
			for _, comment := range items {
				out = append(out, eventsource.ReviewComment{
					ID:        comment.ID,
					Actor:     comment.User.Login,
					Body:      comment.Body,
					CreatedAt: comment.CreatedAt,
				})
			}
			return len(items), nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// paginate walks pages of path until a short page, feeding each
// response body to decode.
func (c *Client) paginate(ctx context.Context, path string, decode func(io.Reader) (int, error)) error {
	for page := 1; page <= maxPages; page++ {
		q := url.Values{
			"per_page": {strconv.Itoa(perPage)},
			"page":     {strconv.Itoa(page)},
		}

		resp, err := c.do(ctx, path+"?"+q.Encode())
		if err != nil {
			return err
		}

		n, err := decode(resp.Body)
		drainAndClose(resp.Body)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if n < perPage {
			break
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, pathAndQuery string, v interface{}) error {
	resp, err := c.do(ctx, pathAndQuery)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", pathAndQuery, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, pathAndQuery string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp)
		drainAndClose(resp.Body)
		c.logger.Warnw("source rate limited", "path", pathAndQuery, "retry_after", retryAfter)
		return nil, &eventsource.RateLimitError{RetryAfter: retryAfter}
	default:
		status := resp.StatusCode
		drainAndClose(resp.Body)
		return nil, fmt.Errorf("github: unexpected status %d for %s", status, pathAndQuery)
	}
}

// parseRetryAfter reads the throttle hint from either the Retry-After
// header or the rate limit reset timestamp.
func parseRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			if wait := time.Until(time.Unix(unix, 0)); wait > 0 {
				return wait
			}
		}
	}
	return 0
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
