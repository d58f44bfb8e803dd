// Package seed creates the default data the service needs on first boot: an
// admin account and a small starter catalog. Seeding is idempotent; rows that
// already exist are left alone.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/app/repositories"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/auth"
	"github.com/mvarela/uniregistro/internal/pkg/logger"
)

// CreateDefaultData seeds the admin account and the starter subject catalog
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, adminPassword string) error {
	repos := repositories.NewRepositories(dbPool)

	if err := createDefaultAdmin(ctx, repos.UserRepository, adminPassword); err != nil {
		return err
	}
	return createDefaultCatalog(ctx, repos.SubjectRepository)
}

func createDefaultAdmin(ctx context.Context, userRepo *repositories.UserRepository, password string) error {
	if _, err := userRepo.GetByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:  "admin",
		Email:     "admin@uniregistro.local",
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if apperrors.Is(err, apperrors.ErrUsernameExists, apperrors.ErrEmailExists) {
			return nil
		}
		return err
	}

	logger.Info().Str("username", admin.Username).Msg("Default admin account created")
	return nil
}

func createDefaultCatalog(ctx context.Context, subjectRepo *repositories.SubjectRepository) error {
	existing, err := subjectRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	subjects := []*models.Subject{
		{Code: "MAT101", Name: "Calculus I", Credits: 6},
		{Code: "MAT201", Name: "Calculus II", Credits: 6},
		{Code: "FIS101", Name: "Physics I", Credits: 5},
		{Code: "INF101", Name: "Introduction to Programming", Credits: 4},
		{Code: "INF201", Name: "Data Structures", Credits: 5},
	}

	byCode := make(map[string]int64, len(subjects))
	for _, subject := range subjects {
		if err := subjectRepo.Create(ctx, subject); err != nil {
			return err
		}
		byCode[subject.Code] = subject.ID
	}

	// Edges point from subject to prerequisite and are acyclic by
	// construction.
	edges := [][2]string{
		{"MAT201", "MAT101"},
		{"FIS101", "MAT101"},
		{"INF201", "INF101"},
	}
	for _, edge := range edges {
		if err := subjectRepo.AddPrerequisite(ctx, byCode[edge[0]], byCode[edge[1]]); err != nil {
			return err
		}
	}

	logger.Info().Int("subjects", len(subjects)).Msg("Starter catalog created")
	return nil
}
