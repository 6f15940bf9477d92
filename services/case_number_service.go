package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

// caseNumberMaxSequence caps a calendar day at 99 cases, the most two
// sequence digits can encode.
const caseNumberMaxSequence = 99

// InterfaceCaseNumberService defines the case number generator interface
type InterfaceCaseNumberService interface {
	Generate(tx *gorm.DB) (string, error)
}

// CaseNumberService produces the unique, date-encoded case numbers of the
// form YY-MON-DD-SS. The daily sequence is derived from the cases already
// persisted for that date instead of a process-local counter, so concurrent
// generation and restarts cannot reissue a number mid-day.
type CaseNumberService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewCaseNumberService creates a new case number service
func NewCaseNumberService(db *gorm.DB) InterfaceCaseNumberService {
	return &CaseNumberService{
		DB:  db,
		Now: time.Now,
	}
}

// Generate allocates the next case number. It must run inside the same
// transaction that persists the new case so the derived sequence and the
// unique index act as one unit.
func (s *CaseNumberService) Generate(tx *gorm.DB) (string, error) {
	if tx == nil {
		tx = s.DB
	}

	prefix := s.datePrefix(s.Now())

	// Next sequence = number of cases already issued today + 1. The unique
	// index on case_number catches the remaining race; collisions retry with
	// the next sequence value.
	var issuedToday int64
	if err := tx.Model(&models.Dog{}).
		Where("case_number LIKE ?", prefix+"-%").
		Count(&issuedToday).Error; err != nil {
		return "", code.Newf(code.ErrDatabase, "failed to count today's cases: %v", err)
	}

	for sequence := int(issuedToday) + 1; sequence <= caseNumberMaxSequence; sequence++ {
		candidate := fmt.Sprintf("%s-%02d", prefix, sequence)

		var existing int64
		if err := tx.Model(&models.Dog{}).
			Where("case_number = ?", candidate).
			Count(&existing).Error; err != nil {
			return "", code.Newf(code.ErrDatabase, "failed to check case number: %v", err)
		}
		if existing == 0 {
			return candidate, nil
		}
	}

	return "", code.New(code.ErrCaseNumberExhausted)
}

// datePrefix renders YY-MON-DD for the given wall-clock date
func (s *CaseNumberService) datePrefix(t time.Time) string {
	return strings.ToUpper(t.Format("06-Jan-02"))
}
