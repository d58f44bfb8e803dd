package dto

import (
	"github.com/mvarela/uniregistro/internal/app/models"
)

// CreateSubjectRequest represents the data needed to create a catalog subject
type CreateSubjectRequest struct {
	Code    string `json:"code" binding:"required,min=2,max=20" example:"MAT101"`
	Name    string `json:"name" binding:"required" example:"Calculus"`
	Credits int    `json:"credits" binding:"min=0" example:"6"`
}

// AddPrerequisiteRequest represents adding a prerequisite edge to a subject
type AddPrerequisiteRequest struct {
	PrerequisiteID int64 `json:"prerequisiteId" binding:"required,min=1" example:"2"`
}

// SubjectResponse represents subject information returned by the API
type SubjectResponse struct {
	ID            int64   `json:"id" example:"1"`
	Code          string  `json:"code" example:"MAT101"`
	Name          string  `json:"name" example:"Calculus"`
	Credits       int     `json:"credits" example:"6"`
	Prerequisites []int64 `json:"prerequisites"`
	Dependents    []int64 `json:"dependents"`
}

// NewSubjectResponse maps a catalog subject to its API representation
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	prereqs := subject.Prerequisites
	if prereqs == nil {
		prereqs = []int64{}
	}
	dependents := subject.Dependents
	if dependents == nil {
		dependents = []int64{}
	}
	return SubjectResponse{
		ID:            subject.ID,
		Code:          subject.Code,
		Name:          subject.Name,
		Credits:       subject.Credits,
		Prerequisites: prereqs,
		Dependents:    dependents,
	}
}

// NewSubjectListResponse maps a slice of catalog subjects
func NewSubjectListResponse(subjects []*models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(*subject))
	}
	return responses
}
