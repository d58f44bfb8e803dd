package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/dberrors"
)

// StudentRepository handles database operations for the student aggregate.
// It satisfies the checkout guard's StudentStore contract: reads are plain
// selects and writes go through a row-level compare-and-swap on version.
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, enrollment_number, first_name, last_name, status,
	admission_date, withdrawal_date, withdrawal_reason, version`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	err := row.Scan(
		&student.ID,
		&student.EnrollmentNumber,
		&student.FirstName,
		&student.LastName,
		&student.Status,
		&student.AdmissionDate,
		&student.WithdrawalDate,
		&student.WithdrawalReason,
		&student.Version,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new active student at version 1
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (enrollment_number, first_name, last_name, status, admission_date, version)
		VALUES ($1, $2, $3, $4, $5, 1)
		RETURNING id, version
	`

	err := r.db.QueryRow(ctx, query,
		student.EnrollmentNumber,
		student.FirstName,
		student.LastName,
		models.StudentActive,
		student.AdmissionDate,
	).Scan(&student.ID, &student.Version)
	if err != nil {
		if dberrors.IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: enrollment number %q", apperrors.ErrEnrollmentNumberExists, student.EnrollmentNumber)
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	student.Status = models.StudentActive
	return nil
}

// GetByID retrieves a student with their completed subjects
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	if err := r.loadCompletedSubjects(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// GetByEnrollmentNumber retrieves a student by their external identifier
func (r *StudentRepository) GetByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE enrollment_number = $1`
	student, err := scanStudent(r.db.QueryRow(ctx, query, enrollmentNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	if err := r.loadCompletedSubjects(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// GetAll retrieves all students, optionally filtered to active ones
func (r *StudentRepository) GetAll(ctx context.Context, activeOnly bool) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if activeOnly {
		query += ` WHERE status = 'ACTIVE'`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, student := range students {
		if err := r.loadCompletedSubjects(ctx, student); err != nil {
			return nil, err
		}
	}
	return students, nil
}

// UpdateVersioned persists the whole aggregate in one transaction, guarded by
// the version check. The UPDATE's WHERE clause is the compare-and-swap: when
// another commit already advanced the row, zero rows match and the caller
// gets ErrConflict.
func (r *StudentRepository) UpdateVersioned(ctx context.Context, student *models.Student, expectedVersion int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE students
		SET first_name = $1,
		    last_name = $2,
		    status = $3,
		    withdrawal_date = $4,
		    withdrawal_reason = $5,
		    version = version + 1
		WHERE id = $6 AND version = $7
	`

	cmdTag, err := tx.Exec(ctx, query,
		student.FirstName,
		student.LastName,
		student.Status,
		student.WithdrawalDate,
		student.WithdrawalReason,
		student.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Distinguish a lost race from a missing row.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, student.ID).Scan(&exists); err != nil {
			return fmt.Errorf("error checking student existence: %w", err)
		}
		if !exists {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("%w: student %d version %d superseded", apperrors.ErrConflict, student.ID, expectedVersion)
	}

	// The completed set is part of the aggregate and travels with the version
	// bump.
	if _, err := tx.Exec(ctx, `DELETE FROM student_subjects WHERE student_id = $1`, student.ID); err != nil {
		return fmt.Errorf("error clearing completed subjects: %w", err)
	}
	for _, subjectID := range student.CompletedSubjects {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_subjects (student_id, subject_id) VALUES ($1, $2)`,
			student.ID, subjectID); err != nil {
			return fmt.Errorf("error writing completed subject: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *StudentRepository) loadCompletedSubjects(ctx context.Context, student *models.Student) error {
	rows, err := r.db.Query(ctx,
		`SELECT subject_id FROM student_subjects WHERE student_id = $1 ORDER BY subject_id`, student.ID)
	if err != nil {
		return fmt.Errorf("error retrieving completed subjects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subjectID int64
		if err := rows.Scan(&subjectID); err != nil {
			return err
		}
		student.CompletedSubjects = append(student.CompletedSubjects, subjectID)
	}
	return rows.Err()
}
