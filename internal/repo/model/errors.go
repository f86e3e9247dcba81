package model

import "errors"

var (
	// ErrRepoNotFound indicates the repository is not tracked.
	ErrRepoNotFound = errors.New("repository not tracked")
	// ErrRepoExists indicates the repository is already tracked.
	ErrRepoExists = errors.New("repository already tracked")
	// ErrSyncInProgress indicates another sync holds the repository lock.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrInvalidRepoName indicates a missing or malformed owner/name pair.
	ErrInvalidRepoName = errors.New("invalid repository name")
)
