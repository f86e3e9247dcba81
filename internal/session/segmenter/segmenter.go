// Package segmenter groups a pull request's raw event log into review
// sessions bounded by commit pushes and idle-time gaps.
package segmenter

import (
	"sort"
	"time"

	"github.com/google/uuid"

	eventModel "github.com/dapplion/review-royale/internal/event/model"
	sessionModel "github.com/dapplion/review-royale/internal/session/model"
)

const (
	// IdleGap is the inactivity threshold that closes an open session.
	IdleGap = 24 * time.Hour

	// RubberStampWindow is the maximum elapsed review time under which a
	// zero-comment approval is denied credit.
	RubberStampWindow = time.Minute

	// SubstantiveBodyLength is the trimmed body length a comment must
	// exceed to count as substantive.
	SubstantiveBodyLength = 20
)

// open tracks one in-progress session while folding the event stream.
type open struct {
	session      sessionModel.ReviewSession
	lastActivity time.Time
	// commitBaseline is the most recent author commit at or before the
	// session opened; nil means "no prior commit", treated as not fast.
	commitBaseline *time.Time
}

// Segment folds one pull request's events into the ordered list of
// eligible review sessions, across all reviewers. Events may arrive in
// any order; they are sorted by (occurred_at, kind, seq) with commits
// ranked before comments at identical timestamps so that a push and a
// comment sharing a timestamp land in separate sessions.
func Segment(events []eventModel.RawEvent) []sessionModel.ReviewSession {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]eventModel.RawEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
			return ra < rb
		}
		return a.Seq < b.Seq
	})

	var sessions []sessionModel.ReviewSession
	arena := make(map[string]*open) // keyed by reviewer
	var lastCommitAt *time.Time

	for i := range sorted {
		ev := &sorted[i]

		switch ev.Kind {
		case eventModel.KindCommitPushed:
			// Only pushes by the PR author re-baseline the review; a
			// reviewer pushing a fixup does not end their own session.
			if ev.Actor != ev.PRAuthor {
				continue
			}
			for reviewer, o := range arena {
				sessions = appendEligible(sessions, o)
				delete(arena, reviewer)
			}
			t := ev.OccurredAt
			lastCommitAt = &t

		case eventModel.KindCommentPosted, eventModel.KindReviewStateChanged:
			// The author replying on their own pull request is not review
			// activity and earns no session.
			if ev.Actor == ev.PRAuthor {
				continue
			}
			o, ok := arena[ev.Actor]
			if ok && ev.OccurredAt.Sub(o.lastActivity) > IdleGap {
				sessions = appendEligible(sessions, o)
				ok = false
			}
			if !ok {
				o = newOpen(ev, lastCommitAt)
				arena[ev.Actor] = o
			}
			fold(o, ev)
		}
	}

	for _, o := range arena {
		sessions = appendEligible(sessions, o)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].WindowStart.Equal(sessions[j].WindowStart) {
			return sessions[i].WindowStart.Before(sessions[j].WindowStart)
		}
		return sessions[i].Reviewer < sessions[j].Reviewer
	})
	return sessions
}

// sessionID derives a stable id from the session's opening event, so
// that repeated recomputation over the same event log yields identical
// rows. Sessions are disjoint per (pull request, reviewer), which makes
// the opening timestamp unique within the key.
func sessionID(ev *eventModel.RawEvent) string {
	key := ev.RepoID + "/" + ev.PullRequestID + "/" + ev.Actor + "/" +
		ev.OccurredAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// kindRank orders event kinds at identical timestamps: commits first,
// so that same-instant reviewer activity starts against the new baseline.
func kindRank(k eventModel.Kind) int {
	if k == eventModel.KindCommitPushed {
		return 0
	}
	return 1
}

func newOpen(ev *eventModel.RawEvent, lastCommitAt *time.Time) *open {
	o := &open{
		session: sessionModel.ReviewSession{
			ID:            sessionID(ev),
			RepoID:        ev.RepoID,
			PullRequestID: ev.PullRequestID,
			Reviewer:      ev.Actor,
			WindowStart:   ev.OccurredAt,
			WindowEnd:     ev.OccurredAt,
		},
		lastActivity: ev.OccurredAt,
	}
	if lastCommitAt != nil {
		t := *lastCommitAt
		o.commitBaseline = &t
	}
	return o
}

// fold merges one reviewer event into the open session.
func fold(o *open, ev *eventModel.RawEvent) {
	o.lastActivity = ev.OccurredAt
	if ev.OccurredAt.After(o.session.WindowEnd) {
		o.session.WindowEnd = ev.OccurredAt
	}

	// A review submission with a non-empty body reads as one more comment.
	if ev.Kind == eventModel.KindCommentPosted || ev.BodyLength > 0 {
		o.session.CommentCount++
		substantive := ev.BodyLength > SubstantiveBodyLength
		if substantive {
			o.session.SubstantiveCommentCount++
		}
		o.session.Comments = append(o.session.Comments, sessionModel.CommentRef{
			SourceID:    ev.SourceID,
			Substantive: substantive,
		})
	}

	if ev.IsStateChange() {
		o.session.StateChange = sessionModel.StateChangeFrom(ev.ReviewState)
	}
}

// appendEligible finalizes an open session and appends it if it passes
// the eligibility filter; ineligible sessions are discarded outright.
func appendEligible(
	sessions []sessionModel.ReviewSession,
	o *open,
) []sessionModel.ReviewSession {
	s := o.session

	if o.commitBaseline != nil {
		secs := int64(s.WindowStart.Sub(*o.commitBaseline) / time.Second)
		s.SecondsSinceLastCommit = &secs
	}

	// A session must contain at least one substantive comment or a verdict.
	if s.SubstantiveCommentCount == 0 && !s.HasStateChange() {
		return sessions
	}

	// Rubber stamp: a bare approval inside one minute earns nothing.
	if s.StateChange == sessionModel.StateChangeApproved &&
		s.CommentCount == 0 &&
		s.WindowEnd.Sub(s.WindowStart) < RubberStampWindow {
		return sessions
	}

	return append(sessions, s)
}
