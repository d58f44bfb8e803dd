package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvarela/uniregistro/internal/app/catalog"
	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/app/repositories"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/logger"
)

// CatalogService coordinates the in-memory subject graph with its durable
// copy. The graph validates every mutation first (duplicates, cycles, blocked
// deletes); the database write follows only after the graph accepts, and a
// failed write rolls the graph change back so the two never diverge.
type CatalogService struct {
	graph       *catalog.Graph
	subjectRepo *repositories.SubjectRepository
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(graph *catalog.Graph, subjectRepo *repositories.SubjectRepository) *CatalogService {
	return &CatalogService{
		graph:       graph,
		subjectRepo: subjectRepo,
	}
}

// Graph exposes the underlying subject graph for read-side collaborators
func (s *CatalogService) Graph() *catalog.Graph {
	return s.graph
}

// CreateSubject validates and persists a new subject, then registers it in
// the graph. The row is inserted first because the database generates the id.
func (s *CatalogService) CreateSubject(ctx context.Context, code, name string, credits int) (*models.Subject, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, apperrors.NewValidationError("subject code cannot be empty")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("subject name cannot be empty")
	}
	if credits < 0 {
		return nil, apperrors.NewValidationError("credits must be non-negative")
	}

	if _, err := s.graph.GetByCode(code); err == nil {
		return nil, fmt.Errorf("%w: subject code %q", apperrors.ErrDuplicateKey, code)
	}

	subject := &models.Subject{Code: code, Name: name, Credits: credits}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}

	if err := s.graph.AddSubject(subject); err != nil {
		// The row exists but the graph refused it; drop the row so the stores
		// stay aligned.
		if delErr := s.subjectRepo.Delete(ctx, subject.ID); delErr != nil {
			logger.Error().Err(delErr).Int64("subjectId", subject.ID).Msg("Failed to revert subject insert")
		}
		return nil, err
	}

	return s.graph.Get(subject.ID)
}

// DeleteSubject removes a subject. The graph blocks the removal while any
// other subject still lists it as a prerequisite.
func (s *CatalogService) DeleteSubject(ctx context.Context, subjectID int64) error {
	snapshot, err := s.graph.Get(subjectID)
	if err != nil {
		return err
	}

	if err := s.graph.RemoveSubject(subjectID); err != nil {
		return err
	}

	if err := s.subjectRepo.Delete(ctx, subjectID); err != nil {
		// Restore the graph entry and its incoming edges.
		if addErr := s.graph.AddSubject(snapshot); addErr != nil {
			logger.Error().Err(addErr).Int64("subjectId", subjectID).Msg("Failed to revert subject removal")
			return err
		}
		for _, prereqID := range snapshot.Prerequisites {
			if edgeErr := s.graph.AddPrerequisite(subjectID, prereqID); edgeErr != nil {
				logger.Error().Err(edgeErr).Int64("subjectId", subjectID).Msg("Failed to revert prerequisite edge")
			}
		}
		return err
	}
	return nil
}

// AddPrerequisite adds the edge "prerequisiteID before subjectID". The graph
// performs the cycle check before anything is persisted.
func (s *CatalogService) AddPrerequisite(ctx context.Context, subjectID, prerequisiteID int64) (*models.Subject, error) {
	if err := s.graph.AddPrerequisite(subjectID, prerequisiteID); err != nil {
		return nil, err
	}

	if err := s.subjectRepo.AddPrerequisite(ctx, subjectID, prerequisiteID); err != nil {
		if revertErr := s.graph.RemovePrerequisite(subjectID, prerequisiteID); revertErr != nil {
			logger.Error().Err(revertErr).
				Int64("subjectId", subjectID).
				Int64("prerequisiteId", prerequisiteID).
				Msg("Failed to revert prerequisite edge")
		}
		return nil, err
	}
	return s.graph.Get(subjectID)
}

// RemovePrerequisite deletes a prerequisite edge
func (s *CatalogService) RemovePrerequisite(ctx context.Context, subjectID, prerequisiteID int64) (*models.Subject, error) {
	if err := s.graph.RemovePrerequisite(subjectID, prerequisiteID); err != nil {
		return nil, err
	}

	if err := s.subjectRepo.RemovePrerequisite(ctx, subjectID, prerequisiteID); err != nil {
		if revertErr := s.graph.AddPrerequisite(subjectID, prerequisiteID); revertErr != nil {
			logger.Error().Err(revertErr).
				Int64("subjectId", subjectID).
				Int64("prerequisiteId", prerequisiteID).
				Msg("Failed to restore prerequisite edge")
		}
		return nil, err
	}
	return s.graph.Get(subjectID)
}

// GetSubject returns a subject with both edge sets populated
func (s *CatalogService) GetSubject(subjectID int64) (*models.Subject, error) {
	return s.graph.Get(subjectID)
}

// GetSubjectByCode returns a subject identified by its unique code
func (s *CatalogService) GetSubjectByCode(code string) (*models.Subject, error) {
	return s.graph.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
}

// ListSubjects returns every subject ordered by ascending id
func (s *CatalogService) ListSubjects() []*models.Subject {
	return s.graph.All()
}

// TopologicalOrder returns a valid study order over the whole catalog
func (s *CatalogService) TopologicalOrder() ([]*models.Subject, error) {
	return s.graph.TopologicalOrder()
}

// WarmFromStore rebuilds the graph from the database at startup. Subjects are
// loaded before edges so every edge insert finds both endpoints.
func (s *CatalogService) WarmFromStore(ctx context.Context) error {
	subjects, err := s.subjectRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading subjects: %w", err)
	}

	for _, subject := range subjects {
		if err := s.graph.AddSubject(subject); err != nil {
			return fmt.Errorf("registering subject %d: %w", subject.ID, err)
		}
	}
	for _, subject := range subjects {
		for _, prereqID := range subject.Prerequisites {
			if err := s.graph.AddPrerequisite(subject.ID, prereqID); err != nil {
				return fmt.Errorf("registering edge %d -> %d: %w", subject.ID, prereqID, err)
			}
		}
	}

	logger.Info().Int("subjects", s.graph.Len()).Msg("Subject catalog loaded")
	return nil
}
