package dto

import (
	"time"

	"github.com/mvarela/uniregistro/internal/app/models"
)

// CreateStudentRequest represents the data needed to register a student
type CreateStudentRequest struct {
	EnrollmentNumber string     `json:"enrollmentNumber" binding:"required,enrollnum" example:"INS-2024-0042"`
	FirstName        string     `json:"firstName" binding:"required" example:"Ana"`
	LastName         string     `json:"lastName" binding:"required" example:"Quispe"`
	AdmissionDate    *time.Time `json:"admissionDate,omitempty"`
}

// UpdateStudentRequest represents a profile update issued against a checkout.
// The token proves the caller saw the version it is overwriting.
type UpdateStudentRequest struct {
	CheckoutToken string `json:"checkoutToken" binding:"required" example:"8f14e45f-ceea-467f-a9d4-1b2f0f7cfa61"`
	FirstName     string `json:"firstName" binding:"required" example:"Ana"`
	LastName      string `json:"lastName" binding:"required" example:"Quispe"`
}

// WithdrawStudentRequest represents a withdrawal issued against a checkout
type WithdrawStudentRequest struct {
	CheckoutToken string     `json:"checkoutToken" binding:"required" example:"8f14e45f-ceea-467f-a9d4-1b2f0f7cfa61"`
	Reason        string     `json:"reason" binding:"required" example:"Transferred to another institution"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
}

// CompleteSubjectRequest represents recording a passed subject against a checkout
type CompleteSubjectRequest struct {
	CheckoutToken string `json:"checkoutToken" binding:"required" example:"8f14e45f-ceea-467f-a9d4-1b2f0f7cfa61"`
	SubjectID     int64  `json:"subjectId" binding:"required,min=1" example:"5"`
}

// CheckoutResponse represents an issued checkout token
type CheckoutResponse struct {
	Token     string    `json:"token" example:"8f14e45f-ceea-467f-a9d4-1b2f0f7cfa61"`
	StudentID int64     `json:"studentId" example:"1"`
	Version   int64     `json:"version" example:"3"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StudentResponse represents student information returned by the API
type StudentResponse struct {
	ID                int64      `json:"id" example:"1"`
	EnrollmentNumber  string     `json:"enrollmentNumber" example:"INS-2024-0042"`
	FirstName         string     `json:"firstName" example:"Ana"`
	LastName          string     `json:"lastName" example:"Quispe"`
	Status            string     `json:"status" example:"ACTIVE" enums:"ACTIVE,WITHDRAWN"`
	AdmissionDate     time.Time  `json:"admissionDate"`
	WithdrawalDate    *time.Time `json:"withdrawalDate,omitempty"`
	WithdrawalReason  *string    `json:"withdrawalReason,omitempty"`
	Version           int64      `json:"version" example:"3"`
	CompletedSubjects []int64    `json:"completedSubjects"`
}

// NewStudentResponse maps the aggregate to its API representation
func NewStudentResponse(student *models.Student) StudentResponse {
	completed := student.CompletedSubjects
	if completed == nil {
		completed = []int64{}
	}
	return StudentResponse{
		ID:                student.ID,
		EnrollmentNumber:  student.EnrollmentNumber,
		FirstName:         student.FirstName,
		LastName:          student.LastName,
		Status:            string(student.Status),
		AdmissionDate:     student.AdmissionDate,
		WithdrawalDate:    student.WithdrawalDate,
		WithdrawalReason:  student.WithdrawalReason,
		Version:           student.Version,
		CompletedSubjects: completed,
	}
}

// NewStudentListResponse maps a slice of aggregates
func NewStudentListResponse(students []*models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}
