// Package eventsource abstracts the code host the review events come
// from. The sync coordinator depends only on the Adapter interface; the
// github subpackage implements it over the REST API and the fake
// subpackage implements it in memory for tests.
package eventsource

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PullRequest is a pull request as seen by the source.
type PullRequest struct {
	Number    int
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
	MergedAt  *time.Time
}

// Commit is one commit pushed to a pull request branch.
type Commit struct {
	SHA         string
	Author      string
	CommittedAt time.Time
}

// Review is a submitted review with a verdict state.
type Review struct {
	ID          int64
	Actor       string
	State       string
	Body        string
	SubmittedAt time.Time
}

// ReviewComment is an inline comment left during review.
type ReviewComment struct {
	ID        int64
	Actor     string
	Body      string
	CreatedAt time.Time
}

// Adapter lists review activity for one repository. Implementations
// must return items in a stable order and surface throttling via
// RateLimitError.
type Adapter interface {
	// ListPullRequests returns pull requests updated at or after since.
	ListPullRequests(ctx context.Context, owner, name string, since time.Time) ([]PullRequest, error)

	// ListCommits returns the commits on a pull request branch.
	ListCommits(ctx context.Context, owner, name string, number int) ([]Commit, error)

	// ListReviews returns submitted reviews on a pull request.
	ListReviews(ctx context.Context, owner, name string, number int) ([]Review, error)

	// ListReviewComments returns inline review comments on a pull request.
	ListReviewComments(ctx context.Context, owner, name string, number int) ([]ReviewComment, error)
}

// RateLimitError reports that the source throttled us. RetryAfter is
// the minimum wait the source asked for, zero when it gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("source rate limited, retry after %s", e.RetryAfter)
	}
	return "source rate limited"
}

// AsRateLimit unwraps err into a RateLimitError when it is one.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
