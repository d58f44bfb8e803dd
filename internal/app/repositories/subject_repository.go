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

// SubjectRepository handles database operations for subjects and their
// prerequisite edges. The in-memory catalog is the authority for graph
// invariants; this repository only keeps the durable copy in step.
type SubjectRepository struct {
	db *pgxpool.Pool
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a new subject and fills in its generated ID
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := `
		INSERT INTO subjects (code, name, credits)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, subject.Code, subject.Name, subject.Credits).Scan(&subject.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err, "") {
			return fmt.Errorf("%w: subject code %q", apperrors.ErrDuplicateKey, subject.Code)
		}
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// Delete removes a subject and all edges where it appears as a prerequisite
func (r *SubjectRepository) Delete(ctx context.Context, subjectID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM subject_prerequisites WHERE subject_id = $1 OR prerequisite_id = $1`, subjectID); err != nil {
		return fmt.Errorf("error removing prerequisite edges: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return tx.Commit(ctx)
}

// AddPrerequisite persists a prerequisite edge
func (r *SubjectRepository) AddPrerequisite(ctx context.Context, subjectID, prerequisiteID int64) error {
	query := `
		INSERT INTO subject_prerequisites (subject_id, prerequisite_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, subjectID, prerequisiteID); err != nil {
		return fmt.Errorf("error adding prerequisite edge: %w", err)
	}
	return nil
}

// RemovePrerequisite deletes a prerequisite edge
func (r *SubjectRepository) RemovePrerequisite(ctx context.Context, subjectID, prerequisiteID int64) error {
	query := `DELETE FROM subject_prerequisites WHERE subject_id = $1 AND prerequisite_id = $2`
	if _, err := r.db.Exec(ctx, query, subjectID, prerequisiteID); err != nil {
		return fmt.Errorf("error removing prerequisite edge: %w", err)
	}
	return nil
}

// GetAll loads every subject together with its prerequisite edges, used to
// warm the in-memory catalog at startup
func (r *SubjectRepository) GetAll(ctx context.Context) ([]*models.Subject, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, credits FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving subjects: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Subject)
	var subjects []*models.Subject
	for rows.Next() {
		var subject models.Subject
		if err := rows.Scan(&subject.ID, &subject.Code, &subject.Name, &subject.Credits); err != nil {
			return nil, err
		}
		byID[subject.ID] = &subject
		subjects = append(subjects, &subject)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := r.db.Query(ctx,
		`SELECT subject_id, prerequisite_id FROM subject_prerequisites ORDER BY subject_id, prerequisite_id`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving prerequisite edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var subjectID, prerequisiteID int64
		if err := edgeRows.Scan(&subjectID, &prerequisiteID); err != nil {
			return nil, err
		}
		if subject, ok := byID[subjectID]; ok {
			subject.Prerequisites = append(subject.Prerequisites, prerequisiteID)
		}
		if prereq, ok := byID[prerequisiteID]; ok {
			prereq.Dependents = append(prereq.Dependents, subjectID)
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	return subjects, nil
}

// GetByID retrieves a single subject row without edges
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name, credits FROM subjects WHERE id = $1`, id).
		Scan(&subject.ID, &subject.Code, &subject.Name, &subject.Credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}
	return &subject, nil
}
