package guard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// memStudentStore serializes commits per aggregate with a mutex, matching the
// contract a row-level optimistic update provides in postgres.
type memStudentStore struct {
	mu       sync.Mutex
	students map[int64]*models.Student
}

func newMemStudentStore(students ...*models.Student) *memStudentStore {
	s := &memStudentStore{students: make(map[int64]*models.Student)}
	for _, st := range students {
		s.students[st.ID] = st.Clone()
	}
	return s
}

func (s *memStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return st.Clone(), nil
}

func (s *memStudentStore) UpdateVersioned(_ context.Context, student *models.Student, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if current.Version != expectedVersion {
		return apperrors.ErrConflict
	}
	updated := student.Clone()
	updated.Version = expectedVersion + 1
	s.students[student.ID] = updated
	return nil
}

func activeStudent(id int64) *models.Student {
	return &models.Student{
		ID:               id,
		EnrollmentNumber: fmt.Sprintf("INS-2024-%04d", id),
		FirstName:        "Ana",
		LastName:         "Quispe",
		Status:           models.StudentActive,
		AdmissionDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Version:          1,
	}
}

func TestCheckoutUnknownStudent(t *testing.T) {
	g := New(newMemStudentStore(), NewMemoryTokenStore(), time.Minute)

	_, _, err := g.Checkout(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestCheckoutCommitRoundTrip(t *testing.T) {
	store := newMemStudentStore(activeStudent(1))
	g := New(store, NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	token, snapshot, err := g.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), token.Version)
	assert.Equal(t, snapshot.Version, token.Version)

	updated, err := g.Commit(ctx, token.Token, func(st *models.Student) error {
		st.FirstName = "Maria"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria", updated.FirstName)
	assert.Equal(t, int64(2), updated.Version)

	persisted, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Maria", persisted.FirstName)
	assert.Equal(t, int64(2), persisted.Version)
}

func TestCommitWithStaleToken(t *testing.T) {
	store := newMemStudentStore(activeStudent(1))
	g := New(store, NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	// Two admins check out the same version.
	first, _, err := g.Checkout(ctx, 1)
	require.NoError(t, err)
	second, _, err := g.Checkout(ctx, 1)
	require.NoError(t, err)

	// The second admin commits first, advancing the version.
	_, err = g.Commit(ctx, second.Token, func(st *models.Student) error {
		st.LastName = "Mamani"
		return nil
	})
	require.NoError(t, err)

	// The first admin's token is now bound to a superseded version.
	_, err = g.Commit(ctx, first.Token, func(st *models.Student) error {
		st.LastName = "Choque"
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	persisted, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mamani", persisted.LastName)
	assert.Equal(t, int64(2), persisted.Version)
}

func TestCommitAfterExpiry(t *testing.T) {
	store := newMemStudentStore(activeStudent(1))
	g := New(store, NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	token, _, err := g.Checkout(ctx, 1)
	require.NoError(t, err)

	// Move the guard's clock past the hold window.
	g.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = g.Commit(ctx, token.Token, func(st *models.Student) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestCommitUnknownToken(t *testing.T) {
	g := New(newMemStudentStore(activeStudent(1)), NewMemoryTokenStore(), time.Minute)

	_, err := g.Commit(context.Background(), "no-such-token", func(st *models.Student) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestMutationErrorAbortsCommit(t *testing.T) {
	store := newMemStudentStore(activeStudent(1))
	g := New(store, NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	token, _, err := g.Checkout(ctx, 1)
	require.NoError(t, err)

	_, err = g.Commit(ctx, token.Token, func(st *models.Student) error {
		st.FirstName = "should not persist"
		return apperrors.ErrAlreadyCompleted
	})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyCompleted)

	persisted, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", persisted.FirstName)
	assert.Equal(t, int64(1), persisted.Version)
}

func TestConcurrentCommitsExactlyOneWins(t *testing.T) {
	store := newMemStudentStore(activeStudent(1))
	g := New(store, NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	const writers = 8
	tokens := make([]*models.CheckoutToken, writers)
	for i := range tokens {
		token, _, err := g.Checkout(ctx, 1)
		require.NoError(t, err)
		tokens[i] = token
	}

	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = g.Commit(ctx, tokens[i].Token, func(st *models.Student) error {
				st.FirstName = fmt.Sprintf("writer-%d", i)
				return nil
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrConflict)
		}
	}
	assert.Equal(t, 1, successes, "exactly one commit may win from the same version")

	persisted, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), persisted.Version, "version advances by exactly one")
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	expired := &models.CheckoutToken{
		Token:     "t1",
		StudentID: 1,
		Version:   1,
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, store.Save(ctx, expired))

	_, err := store.Get(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
