// Package errors provides sentinel errors and custom error types for git-stack.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrInvariantViolation indicates a caller bug: stale ids, mismatched merges, contradictory actions
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrCommitNotFound indicates that a commit id is not part of the repository history
	ErrCommitNotFound = errors.New("commit not found")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")
)

// InvariantError describes a condition that can only be reached through misuse
// of the graph or classifier APIs.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Op, e.Detail)
}

// Is returns true if the target error is ErrInvariantViolation
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// NewInvariantError creates a new InvariantError
func NewInvariantError(op string, format string, args ...interface{}) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// CommitNotFoundError represents a lookup of an id that the repository does not know
type CommitNotFoundError struct {
	ID string
}

func (e *CommitNotFoundError) Error() string {
	return fmt.Sprintf("commit %s does not exist", e.ID)
}

// Is returns true if the target error is ErrCommitNotFound
func (e *CommitNotFoundError) Is(target error) bool {
	return target == ErrCommitNotFound
}

// NewCommitNotFoundError creates a new CommitNotFoundError
func NewCommitNotFoundError(id string) *CommitNotFoundError {
	return &CommitNotFoundError{ID: id}
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// RepoError wraps a failure reported by the underlying repository.
// These are recoverable; the caller decides whether to retry.
type RepoError struct {
	Op  string
	Err error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("repository %s failed: %v", e.Op, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

// NewRepoError creates a new RepoError
func NewRepoError(op string, err error) *RepoError {
	return &RepoError{Op: op, Err: err}
}
