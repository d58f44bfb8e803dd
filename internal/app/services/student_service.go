package services

import (
	"context"
	"strings"
	"time"

	"github.com/mvarela/uniregistro/internal/app/catalog"
	"github.com/mvarela/uniregistro/internal/app/enrollment"
	"github.com/mvarela/uniregistro/internal/app/guard"
	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/app/repositories"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/logger"
)

// StudentService handles the student aggregate lifecycle. All mutations after
// creation go through the checkout guard: callers obtain a token, then submit
// the change against it, and a stale token surfaces as a conflict instead of
// silently overwriting newer state.
type StudentService struct {
	studentRepo *repositories.StudentRepository
	guard       *guard.Guard
	graph       *catalog.Graph
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo *repositories.StudentRepository, g *guard.Guard, graph *catalog.Graph) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		guard:       g,
		graph:       graph,
	}
}

// CreateStudent registers a new active student at version 1
func (s *StudentService) CreateStudent(ctx context.Context, enrollmentNumber, firstName, lastName string, admissionDate *time.Time) (*models.Student, error) {
	enrollmentNumber = strings.TrimSpace(enrollmentNumber)
	if enrollmentNumber == "" {
		return nil, apperrors.NewValidationError("enrollment number cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, apperrors.NewValidationError("first and last name cannot be empty")
	}

	admitted := time.Now()
	if admissionDate != nil {
		admitted = *admissionDate
	}

	student := &models.Student{
		EnrollmentNumber: enrollmentNumber,
		FirstName:        strings.TrimSpace(firstName),
		LastName:         strings.TrimSpace(lastName),
		AdmissionDate:    admitted,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("studentId", student.ID).
		Str("enrollmentNumber", student.EnrollmentNumber).
		Msg("Student registered")
	return student, nil
}

// GetStudent retrieves a student by id
func (s *StudentService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetStudentByEnrollmentNumber retrieves a student by their external identifier
func (s *StudentService) GetStudentByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error) {
	return s.studentRepo.GetByEnrollmentNumber(ctx, strings.TrimSpace(enrollmentNumber))
}

// ListStudents retrieves all students, optionally only the active ones
func (s *StudentService) ListStudents(ctx context.Context, activeOnly bool) ([]*models.Student, error) {
	return s.studentRepo.GetAll(ctx, activeOnly)
}

// Checkout issues a token bound to the student's current version. The token
// carries no exclusivity; it only proves which version the caller saw.
func (s *StudentService) Checkout(ctx context.Context, studentID int64) (*models.CheckoutToken, *models.Student, error) {
	return s.guard.Checkout(ctx, studentID)
}

// UpdateProfile changes the student's name fields through a checkout commit
func (s *StudentService) UpdateProfile(ctx context.Context, token, firstName, lastName string) (*models.Student, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.NewValidationError("first and last name cannot be empty")
	}

	return s.guard.Commit(ctx, token, func(student *models.Student) error {
		if !student.IsActive() {
			return apperrors.ErrInactiveStudent
		}
		student.FirstName = firstName
		student.LastName = lastName
		return nil
	})
}

// Withdraw transitions the student to WITHDRAWN through a checkout commit.
// The transition is terminal and the reason is mandatory.
func (s *StudentService) Withdraw(ctx context.Context, token, reason string, effectiveDate *time.Time) (*models.Student, error) {
	effective := time.Now()
	if effectiveDate != nil {
		effective = *effectiveDate
	}

	student, err := s.guard.Commit(ctx, token, func(student *models.Student) error {
		return student.Withdraw(reason, effective)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("studentId", student.ID).
		Str("enrollmentNumber", student.EnrollmentNumber).
		Msg("Student withdrawn")
	return student, nil
}

// CompleteSubject records a passed subject through a checkout commit. The
// enrollment rules run inside the commit so they see exactly the state the
// version check protects.
func (s *StudentService) CompleteSubject(ctx context.Context, token string, subjectID int64) (*models.Student, error) {
	return enrollment.RecordCompletion(ctx, s.guard, token, subjectID, s.graph)
}

// CompletedSubjects resolves the student's completed set against the catalog.
// Subjects since removed from the catalog are skipped.
func (s *StudentService) CompletedSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	subjects := make([]*models.Subject, 0, len(student.CompletedSubjects))
	for _, subjectID := range student.CompletedSubjects {
		subject, err := s.graph.Get(subjectID)
		if err != nil {
			continue
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

// EligibleSubjects returns the subjects the student could enroll in now:
// not yet completed, with every prerequisite already in the completed set.
func (s *StudentService) EligibleSubjects(ctx context.Context, studentID int64) ([]*models.Subject, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsActive() {
		return nil, apperrors.ErrInactiveStudent
	}
	return s.graph.EligibleSubjects(student.CompletedSet()), nil
}
