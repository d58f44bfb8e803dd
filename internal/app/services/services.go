package services

import (
	"github.com/mvarela/uniregistro/internal/app/catalog"
	"github.com/mvarela/uniregistro/internal/app/guard"
	"github.com/mvarela/uniregistro/internal/app/repositories"
	"github.com/mvarela/uniregistro/internal/pkg/auth"
)

// Services holds all the service instances
type Services struct {
	AuthService    *AuthService
	CatalogService *CatalogService
	StudentService *StudentService
	UserService    *UserService
}

// NewServices wires the service layer over the shared graph and guard
func NewServices(repos *repositories.Repositories, graph *catalog.Graph, g *guard.Guard, jwtService *auth.JWTService) *Services {
	return &Services{
		AuthService:    NewAuthService(repos.UserRepository, jwtService),
		CatalogService: NewCatalogService(graph, repos.SubjectRepository),
		StudentService: NewStudentService(repos.StudentRepository, g, graph),
		UserService:    NewUserService(repos.UserRepository),
	}
}
