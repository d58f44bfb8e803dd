// Package guard mediates read-modify-write sequences on the student
// aggregate. It implements optimistic concurrency with a bounded advisory
// hold: checkouts are plain reads that hand out a token, and the token is
// only meaningful at commit time. A client that disconnects simply lets its
// token expire; nothing is ever left locked.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// StudentStore is the persistence contract the guard needs: a versioned read
// and an atomic compare-and-swap update keyed on (id, version).
type StudentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	// UpdateVersioned persists the student only if its stored version still
	// equals expectedVersion, bumping the version by exactly one. Returns
	// apperrors.ErrConflict on a version mismatch.
	UpdateVersioned(ctx context.Context, student *models.Student, expectedVersion int64) error
}

// TokenStore holds outstanding checkout tokens until they expire.
type TokenStore interface {
	Save(ctx context.Context, token *models.CheckoutToken) error
	// Get returns apperrors.ErrTokenExpired when the token is unknown or past
	// its expiry.
	Get(ctx context.Context, token string) (*models.CheckoutToken, error)
	Delete(ctx context.Context, token string) error
}

// Mutation is applied to a private copy of the checked-out student. Returning
// an error aborts the commit with no effect.
type Mutation func(student *models.Student) error

// Guard issues checkout tokens and applies guarded commits.
type Guard struct {
	students StudentStore
	tokens   TokenStore
	hold     time.Duration
	now      func() time.Time
}

// New creates a guard with the given hold window for checkout tokens
func New(students StudentStore, tokens TokenStore, hold time.Duration) *Guard {
	return &Guard{
		students: students,
		tokens:   tokens,
		hold:     hold,
		now:      time.Now,
	}
}

// HoldDuration returns the configured checkout window
func (g *Guard) HoldDuration() time.Duration {
	return g.hold
}

// Checkout reads the current student and issues a token bound to its version.
// Checkout never blocks and never excludes other readers; any number of
// concurrent checkouts may exist for the same student.
func (g *Guard) Checkout(ctx context.Context, studentID int64) (*models.CheckoutToken, *models.Student, error) {
	student, err := g.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	token := &models.CheckoutToken{
		Token:     uuid.New().String(),
		StudentID: studentID,
		Version:   student.Version,
		ExpiresAt: g.now().Add(g.hold),
	}
	if err := g.tokens.Save(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("saving checkout token: %w", err)
	}
	return token, student, nil
}

// Commit applies mutate to the student the token was issued for, but only if
// the token has not expired and the student's version still matches the one
// captured at checkout. The version check and write are a single atomic step
// in the store, so for two commits racing from the same version at most one
// succeeds; the loser observes ErrConflict and must re-checkout.
func (g *Guard) Commit(ctx context.Context, tokenValue string, mutate Mutation) (*models.Student, error) {
	token, err := g.tokens.Get(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	if token.Expired(g.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	student, err := g.students.GetByID(ctx, token.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Version != token.Version {
		return nil, fmt.Errorf("%w: student %d moved from version %d to %d",
			apperrors.ErrConflict, token.StudentID, token.Version, student.Version)
	}

	// Mutate a copy; a rejected mutation or a lost CAS race must leave the
	// loaded aggregate untouched.
	updated := student.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}

	if err := g.students.UpdateVersioned(ctx, updated, token.Version); err != nil {
		return nil, err
	}
	updated.Version = token.Version + 1

	// The token is single-use once committed. Failure to drop it is harmless:
	// a reuse attempt fails the version check anyway.
	_ = g.tokens.Delete(ctx, tokenValue)

	return updated, nil
}
