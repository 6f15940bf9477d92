package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

// InterfaceKennelService defines the kennel pool interface
type InterfaceKennelService interface {
	CreateKennel() (*models.Kennel, error)
	ListKennels() ([]models.Kennel, error)
	GetByNumber(number int) (*models.Kennel, error)
	AssignByNumber(tx *gorm.DB, number int) (*models.Kennel, error)
	AssignFirstFree(tx *gorm.DB) (*models.Kennel, error)
	Release(tx *gorm.DB, kennelID uint) error
}

// KennelService manages the shared pool of physical kennels. Occupancy flips
// are guarded updates so two concurrent assignments can never land two dogs
// in the same kennel.
type KennelService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewKennelService creates a new kennel service
func NewKennelService(db *gorm.DB, cfg *config.Config) InterfaceKennelService {
	return &KennelService{
		DB:     db,
		Config: cfg,
	}
}

// CreateKennel creates a kennel numbered one past the current highest. The
// transaction plus the unique index on number serialize concurrent creation.
func (s *KennelService) CreateKennel() (*models.Kennel, error) {
	kennel := &models.Kennel{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var highest int
		row := tx.Model(&models.Kennel{}).Select("COALESCE(MAX(number), 0)").Row()
		if err := row.Scan(&highest); err != nil {
			return code.Newf(code.ErrDatabase, "failed to read highest kennel number: %v", err)
		}

		kennel.Number = highest + 1
		kennel.IsOccupied = false
		if err := tx.Create(kennel).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to create kennel: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kennel, nil
}

// ListKennels returns all kennels ordered by number
func (s *KennelService) ListKennels() ([]models.Kennel, error) {
	var kennels []models.Kennel
	if err := s.DB.Order("number").Find(&kennels).Error; err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to list kennels: %v", err)
	}
	return kennels, nil
}

// GetByNumber looks a kennel up by its human-facing number
func (s *KennelService) GetByNumber(number int) (*models.Kennel, error) {
	var kennel models.Kennel
	if err := s.DB.Where("number = ?", number).First(&kennel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrKennelNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to look up kennel: %v", err)
	}
	return &kennel, nil
}

// AssignByNumber marks the kennel with the given number occupied. Fails with
// ErrKennelNotFound if it does not exist and ErrKennelOccupied if it is
// already taken.
func (s *KennelService) AssignByNumber(tx *gorm.DB, number int) (*models.Kennel, error) {
	if tx == nil {
		tx = s.DB
	}

	var kennel models.Kennel
	if err := tx.Where("number = ?", number).First(&kennel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrKennelNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to look up kennel: %v", err)
	}

	if err := s.occupy(tx, &kennel); err != nil {
		return nil, err
	}
	return &kennel, nil
}

// AssignFirstFree occupies the lowest-numbered free kennel and returns it.
// A nil kennel with nil error means the pool has no free kennel, which is a
// legitimate outcome rather than a failure.
func (s *KennelService) AssignFirstFree(tx *gorm.DB) (*models.Kennel, error) {
	if tx == nil {
		tx = s.DB
	}

	for {
		var kennel models.Kennel
		if err := tx.Where("is_occupied = ?", false).Order("number").First(&kennel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, code.Newf(code.ErrDatabase, "failed to find free kennel: %v", err)
		}

		err := s.occupy(tx, &kennel)
		if err == nil {
			return &kennel, nil
		}
		// Lost the race for this kennel; try the next free one.
		if code.Is(err, code.ErrKennelOccupied) {
			continue
		}
		return nil, err
	}
}

// occupy flips the occupancy flag with a guarded update so the read and the
// flip behave as one atomic step.
func (s *KennelService) occupy(tx *gorm.DB, kennel *models.Kennel) error {
	result := tx.Model(&models.Kennel{}).
		Where("id = ? AND is_occupied = ?", kennel.ID, false).
		Update("is_occupied", true)
	if result.Error != nil {
		return code.Newf(code.ErrDatabase, "failed to occupy kennel: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return code.New(code.ErrKennelOccupied)
	}
	kennel.IsOccupied = true
	return nil
}

// Release frees a kennel. Releasing an already-free kennel is a no-op;
// releasing a kennel that does not exist is ErrKennelNotFound.
func (s *KennelService) Release(tx *gorm.DB, kennelID uint) error {
	if tx == nil {
		tx = s.DB
	}

	var kennel models.Kennel
	if err := tx.First(&kennel, kennelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.New(code.ErrKennelNotFound)
		}
		return code.Newf(code.ErrDatabase, "failed to look up kennel: %v", err)
	}

	if !kennel.IsOccupied {
		return nil
	}

	if err := tx.Model(&kennel).Update("is_occupied", false).Error; err != nil {
		return code.Newf(code.ErrDatabase, "failed to release kennel: %v", err)
	}
	return nil
}
