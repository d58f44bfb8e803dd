package enrollment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/app/catalog"
	"github.com/mvarela/uniregistro/internal/app/guard"
	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

func testGraph(t *testing.T) *catalog.Graph {
	t.Helper()
	g := catalog.NewGraph()
	require.NoError(t, g.AddSubject(&models.Subject{ID: 1, Code: "MAT101", Name: "Calculus I", Credits: 6}))
	require.NoError(t, g.AddSubject(&models.Subject{ID: 2, Code: "MAT201", Name: "Calculus II", Credits: 6}))
	require.NoError(t, g.AddPrerequisite(2, 1))
	return g
}

func testStudent(status models.StudentStatus, completed ...int64) *models.Student {
	return &models.Student{
		ID:                1,
		EnrollmentNumber:  "INS-2024-0001",
		FirstName:         "Ana",
		LastName:          "Quispe",
		Status:            status,
		AdmissionDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Version:           1,
		CompletedSubjects: completed,
	}
}

func TestCanEnroll(t *testing.T) {
	g := testGraph(t)

	tests := []struct {
		name      string
		student   *models.Student
		subjectID int64
		wantErr   error
	}{
		{"inactive student", testStudent(models.StudentWithdrawn), 1, apperrors.ErrInactiveStudent},
		{"unknown subject", testStudent(models.StudentActive), 99, apperrors.ErrSubjectNotFound},
		{"already completed", testStudent(models.StudentActive, 1), 1, apperrors.ErrAlreadyCompleted},
		{"prerequisites unmet", testStudent(models.StudentActive), 2, apperrors.ErrPrerequisitesUnmet},
		{"no prerequisites", testStudent(models.StudentActive), 1, nil},
		{"prerequisites satisfied", testStudent(models.StudentActive, 1), 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanEnroll(tt.student, tt.subjectID, g)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// enrollmentStore is the minimal versioned store the guard needs for these
// tests.
type enrollmentStore struct {
	mu      sync.Mutex
	student *models.Student
}

func (s *enrollmentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.student == nil || s.student.ID != id {
		return nil, apperrors.ErrStudentNotFound
	}
	return s.student.Clone(), nil
}

func (s *enrollmentStore) UpdateVersioned(_ context.Context, student *models.Student, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.student.Version != expectedVersion {
		return apperrors.ErrConflict
	}
	updated := student.Clone()
	updated.Version = expectedVersion + 1
	s.student = updated
	return nil
}

func TestRecordCompletion(t *testing.T) {
	g := testGraph(t)
	store := &enrollmentStore{student: testStudent(models.StudentActive, 1)}
	gd := guard.New(store, guard.NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	token, _, err := gd.Checkout(ctx, 1)
	require.NoError(t, err)

	updated, err := RecordCompletion(ctx, gd, token.Token, 2, g)
	require.NoError(t, err)
	assert.True(t, updated.HasCompleted(2))
	assert.Equal(t, int64(2), updated.Version)
}

func TestRecordCompletionRejectsIllegalEnrollment(t *testing.T) {
	g := testGraph(t)
	store := &enrollmentStore{student: testStudent(models.StudentActive)}
	gd := guard.New(store, guard.NewMemoryTokenStore(), time.Minute)
	ctx := context.Background()

	token, _, err := gd.Checkout(ctx, 1)
	require.NoError(t, err)

	_, err = RecordCompletion(ctx, gd, token.Token, 2, g)
	assert.ErrorIs(t, err, apperrors.ErrPrerequisitesUnmet)

	// Nothing was written and the version did not move.
	current, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, current.HasCompleted(2))
	assert.Equal(t, int64(1), current.Version)
}
