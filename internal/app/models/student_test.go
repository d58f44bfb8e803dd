package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

func TestWithdraw(t *testing.T) {
	s := &Student{Status: StudentActive, Version: 1}
	effective := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Withdraw("changed university", effective))
	assert.Equal(t, StudentWithdrawn, s.Status)
	require.NotNil(t, s.WithdrawalDate)
	assert.Equal(t, effective, *s.WithdrawalDate)
	require.NotNil(t, s.WithdrawalReason)
	assert.Equal(t, "changed university", *s.WithdrawalReason)
}

func TestWithdrawRequiresReason(t *testing.T) {
	s := &Student{Status: StudentActive}
	err := s.Withdraw("   ", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, StudentActive, s.Status)
}

func TestWithdrawIsTerminal(t *testing.T) {
	s := &Student{Status: StudentActive}
	first := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Withdraw("moved abroad", first))

	err := s.Withdraw("second attempt", first.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// The withdrawal date is written exactly once and never changes.
	assert.Equal(t, first, *s.WithdrawalDate)
	assert.Equal(t, "moved abroad", *s.WithdrawalReason)
}

func TestRecordCompletionDeduplicates(t *testing.T) {
	s := &Student{Status: StudentActive}
	require.NoError(t, s.RecordCompletion(7))
	assert.ErrorIs(t, s.RecordCompletion(7), apperrors.ErrAlreadyCompleted)
	assert.Equal(t, []int64{7}, s.CompletedSubjects)
}

func TestCloneIsDeep(t *testing.T) {
	reason := "original"
	date := time.Now()
	s := &Student{
		Status:            StudentWithdrawn,
		WithdrawalDate:    &date,
		WithdrawalReason:  &reason,
		CompletedSubjects: []int64{1, 2},
	}

	cp := s.Clone()
	cp.CompletedSubjects[0] = 99
	*cp.WithdrawalReason = "mutated"

	assert.Equal(t, int64(1), s.CompletedSubjects[0])
	assert.Equal(t, "original", *s.WithdrawalReason)
}
