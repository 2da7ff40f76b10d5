// Package model contains domain types for repository health analysis.
// These types are independent of any external GitHub library; they mirror
// the normalized shape the fetcher persists to disk.
package model

import "time"

// ItemState represents the lifecycle state of a PR or issue at fetch time.
type ItemState string

const (
	StateOpen   ItemState = "OPEN"
	StateClosed ItemState = "CLOSED"
	StateMerged ItemState = "MERGED"
	StateDraft  ItemState = "DRAFT"
)

// ItemKind discriminates pull requests from issues.
type ItemKind string

const (
	KindPullRequest ItemKind = "pull_request"
	KindIssue       ItemKind = "issue"
)

// Identity is a contributor identity. Two identities refer to the same
// contributor iff their numeric IDs match; a nil ID ("ghost" or otherwise
// unresolvable author) is never merged with any other identity.
type Identity struct {
	Login string `json:"login"`
	ID    *int64 `json:"id"`
}

// UserID returns the numeric contributor id, reporting whether one exists.
func (id *Identity) UserID() (int64, bool) {
	if id == nil || id.ID == nil {
		return 0, false
	}
	return *id.ID, true
}

// Review is a single PR review submission.
type Review struct {
	Author      *Identity  `json:"author"`
	SubmittedAt *time.Time `json:"submittedAt"`
	State       string     `json:"state,omitempty"`
}

// Comment is a single issue or PR comment.
type Comment struct {
	Author    *Identity  `json:"author"`
	CreatedAt *time.Time `json:"createdAt"`
}

// Item is an immutable snapshot of a pull request or issue. Optional fields
// are pointers so that absence is explicit; consumers must check rather than
// rely on zero values (a zero time would silently corrupt window membership).
type Item struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     ItemState  `json:"state"`
	CreatedAt *time.Time `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	MergedAt  *time.Time `json:"mergedAt,omitempty"`
	Author    *Identity  `json:"author"`
	MergedBy  *Identity  `json:"mergedBy,omitempty"`
	Labels    []string   `json:"labels"`
	Reviews   []Review   `json:"reviews,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
}

// Created returns the creation instant, reporting whether one exists.
func (it *Item) Created() (time.Time, bool) {
	if it.CreatedAt == nil {
		return time.Time{}, false
	}
	return *it.CreatedAt, true
}

// Merged returns the merge instant, reporting whether one exists.
// Always false for issues.
func (it *Item) Merged() (time.Time, bool) {
	if it.MergedAt == nil {
		return time.Time{}, false
	}
	return *it.MergedAt, true
}

// AuthorID returns the author's contributor id, reporting whether the item
// has a resolvable author.
func (it *Item) AuthorID() (int64, bool) {
	return it.Author.UserID()
}

// IsOpen reports whether the item was open at fetch time.
func (it *Item) IsOpen() bool {
	return it.State == StateOpen
}
