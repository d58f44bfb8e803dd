package models

import (
	"strings"
	"time"

	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// StudentStatus defines the lifecycle status of a student record
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentWithdrawn StudentStatus = "WITHDRAWN"
)

// Student defines the student aggregate based on the 'students' table.
// The whole struct is the unit of concurrency control: every successful
// mutation bumps Version by exactly one.
type Student struct {
	ID               int64         `json:"id" db:"id" example:"1"`
	EnrollmentNumber string        `json:"enrollmentNumber" db:"enrollment_number" example:"INS-2024-0042"` // Stable external identifier
	FirstName        string        `json:"firstName" db:"first_name" example:"Ana"`
	LastName         string        `json:"lastName" db:"last_name" example:"Quispe"`
	Status           StudentStatus `json:"status" db:"status" example:"ACTIVE"`
	AdmissionDate    time.Time     `json:"admissionDate" db:"admission_date"`
	WithdrawalDate   *time.Time    `json:"withdrawalDate,omitempty" db:"withdrawal_date"`   // Set exactly once, on withdrawal
	WithdrawalReason *string       `json:"withdrawalReason,omitempty" db:"withdrawal_reason"`
	Version          int64         `json:"version" db:"version" example:"3"` // Optimistic concurrency counter

	// CompletedSubjects holds the IDs of subjects the student has passed.
	CompletedSubjects []int64 `json:"completedSubjects"`
}

// IsActive reports whether the student can be operated on
func (s *Student) IsActive() bool {
	return s.Status == StudentActive
}

// HasCompleted reports whether subjectID is in the completed set
func (s *Student) HasCompleted(subjectID int64) bool {
	for _, id := range s.CompletedSubjects {
		if id == subjectID {
			return true
		}
	}
	return false
}

// CompletedSet returns the completed subjects as a set
func (s *Student) CompletedSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(s.CompletedSubjects))
	for _, id := range s.CompletedSubjects {
		set[id] = struct{}{}
	}
	return set
}

// Withdraw transitions the student from ACTIVE to WITHDRAWN. The transition
// is terminal; there is no edge back to ACTIVE.
func (s *Student) Withdraw(reason string, effectiveDate time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.NewValidationError("withdrawal reason cannot be empty")
	}
	if s.Status != StudentActive {
		return apperrors.ErrInvalidTransition
	}
	s.Status = StudentWithdrawn
	s.WithdrawalDate = &effectiveDate
	s.WithdrawalReason = &reason
	return nil
}

// RecordCompletion adds subjectID to the completed set
func (s *Student) RecordCompletion(subjectID int64) error {
	if s.HasCompleted(subjectID) {
		return apperrors.ErrAlreadyCompleted
	}
	s.CompletedSubjects = append(s.CompletedSubjects, subjectID)
	return nil
}

// Clone returns a deep copy of the aggregate. Mutations issued through the
// checkout guard operate on a copy so a failed commit leaves nothing behind.
func (s *Student) Clone() *Student {
	cp := *s
	if s.WithdrawalDate != nil {
		d := *s.WithdrawalDate
		cp.WithdrawalDate = &d
	}
	if s.WithdrawalReason != nil {
		r := *s.WithdrawalReason
		cp.WithdrawalReason = &r
	}
	cp.CompletedSubjects = make([]int64, len(s.CompletedSubjects))
	copy(cp.CompletedSubjects, s.CompletedSubjects)
	return &cp
}
