// Package fake provides an in-memory eventsource.Adapter for tests.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/dapplion/review-royale/internal/eventsource"
)

type prKey struct {
	Owner  string
	Name   string
	Number int
}

// Adapter serves canned review activity. Safe for concurrent use.
type Adapter struct {
	mu             sync.Mutex
	pulls          map[string][]eventsource.PullRequest
	commits        map[prKey][]eventsource.Commit
	reviews        map[prKey][]eventsource.Review
	reviewComments map[prKey][]eventsource.ReviewComment

	// Err, when set, is returned by every call until cleared.
	Err error

	calls int
}

// New creates an empty fake adapter.
func New() *Adapter {
	return &Adapter{
		pulls:          make(map[string][]eventsource.PullRequest),
		commits:        make(map[prKey][]eventsource.Commit),
		reviews:        make(map[prKey][]eventsource.Review),
		reviewComments: make(map[prKey][]eventsource.ReviewComment),
	}
}

// AddPullRequest registers a pull request and its activity.
func (a *Adapter) AddPullRequest(owner, name string, pr eventsource.PullRequest,
	commits []eventsource.Commit, reviews []eventsource.Review, comments []eventsource.ReviewComment,
) {
	a.mu.Lock()
	defer a.mu.Unlock()

	repo := owner + "/" + name
	key := prKey{Owner: owner, Name: name, Number: pr.Number}
	a.pulls[repo] = append(a.pulls[repo], pr)
	a.commits[key] = commits
	a.reviews[key] = reviews
	a.reviewComments[key] = comments
}

// SetErr makes every subsequent call fail with err.
func (a *Adapter) SetErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Err = err
}

// Calls reports how many adapter calls were made.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *Adapter) ListPullRequests(_ context.Context, owner, name string, since time.Time) ([]eventsource.PullRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return nil, a.Err
	}

	var out []eventsource.PullRequest
	for _, pr := range a.pulls[owner+"/"+name] {
		if !pr.UpdatedAt.Before(since) {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (a *Adapter) ListCommits(_ context.Context, owner, name string, number int) ([]eventsource.Commit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return a.commits[prKey{Owner: owner, Name: name, Number: number}], nil
}

func (a *Adapter) ListReviews(_ context.Context, owner, name string, number int) ([]eventsource.Review, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return a.reviews[prKey{Owner: owner, Name: name, Number: number}], nil
}

func (a *Adapter) ListReviewComments(_ context.Context, owner, name string, number int) ([]eventsource.ReviewComment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.Err != nil {
		return nil, a.Err
	}
	return a.reviewComments[prKey{Owner: owner, Name: name, Number: number}], nil
}
