// Package enrollment decides whether a subject registration is legal and
// records completions through the checkout guard.
package enrollment

import (
	"context"
	"fmt"

	"github.com/mvarela/uniregistro/internal/app/catalog"
	"github.com/mvarela/uniregistro/internal/app/guard"
	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// CanEnroll is a pure decision with no side effects: it checks the student's
// status, the subject's existence, prior completion, and whether the
// subject's full prerequisite set is contained in the student's completed
// set.
func CanEnroll(student *models.Student, subjectID int64, graph *catalog.Graph) error {
	if !student.IsActive() {
		return fmt.Errorf("%w: student %s", apperrors.ErrInactiveStudent, student.EnrollmentNumber)
	}

	prereqs, err := graph.Prerequisites(subjectID)
	if err != nil {
		return err
	}

	if student.HasCompleted(subjectID) {
		return fmt.Errorf("%w: subject %d", apperrors.ErrAlreadyCompleted, subjectID)
	}

	completed := student.CompletedSet()
	for _, prereqID := range prereqs {
		if _, ok := completed[prereqID]; !ok {
			return fmt.Errorf("%w: missing subject %d", apperrors.ErrPrerequisitesUnmet, prereqID)
		}
	}
	return nil
}

// RecordCompletion validates enrollment against the checked-out snapshot and,
// if legal, commits the completed-set addition through the guard. The
// validation runs inside the commit mutation so it sees exactly the state
// the version check protects.
func RecordCompletion(ctx context.Context, g *guard.Guard, token string, subjectID int64, graph *catalog.Graph) (*models.Student, error) {
	return g.Commit(ctx, token, func(student *models.Student) error {
		if err := CanEnroll(student, subjectID, graph); err != nil {
			return err
		}
		return student.RecordCompletion(subjectID)
	})
}
