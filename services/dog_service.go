package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

// fitForReleaseReportCount is the number of daily monitoring reports after
// which a case is considered fit for release.
const fitForReleaseReportCount = 2

// dispatchWaitDays is how long after surgery a case becomes dispatchable.
const dispatchWaitDays = 3

// caseCreateAttempts bounds the retry of intake when two concurrent intakes
// derive the same daily sequence and collide on the case_number unique index.
const caseCreateAttempts = 3

// CaseNotifier receives lifecycle transition events. Implementations must not
// block the request path.
type CaseNotifier interface {
	PublishCaseStatus(caseNumber string, status models.DogStatus)
}

// IntakeInput is the capture data recorded by a catcher at intake
type IntakeInput struct {
	CatchingLocation string     `json:"catching_location"`
	LocationDetails  string     `json:"location_details"`
	CatchingDate     *time.Time `json:"catching_date"`
	SpotPhoto        string     `json:"-"`
	AdditionalPhotos []string   `json:"-"`
}

// ObservationInput assigns a kennel and records descriptive attributes.
// A nil KennelNumber asks the pool for the first free kennel.
type ObservationInput struct {
	KennelNumber           *int     `json:"kennel_id"`
	DogName                string   `json:"dog_name"`
	Breed                  string   `json:"breed"`
	Age                    int      `json:"age"`
	MainColor              string   `json:"main_color"`
	Description            string   `json:"description"`
	Gender                 string   `json:"gender"`
	Aggression             bool     `json:"aggression"`
	KennelPhoto            string   `json:"-"`
	AdditionalKennelPhotos []string `json:"-"`
}

// VetUpdateInput is one veterinary submission. The surgery photo group and
// the notes photo group are mutually exclusive per call.
type VetUpdateInput struct {
	Details               VetDetails `json:"vet_details"`
	SurgeryPhoto          string     `json:"-"`
	AdditionalPhotos      []string   `json:"-"`
	SurgeryNotesPhoto     string     `json:"-"`
	AdditionalNotesPhotos []string   `json:"-"`
}

// VetDetails carries the medical form fields of a vet submission
type VetDetails struct {
	DogWeight     float64    `json:"dog_weight"`
	Temperature   float64    `json:"temperature"`
	SkinCondition string     `json:"skin_condition"`
	SurgeryDate   *time.Time `json:"surgery_date"`
	Procedure     string     `json:"procedure"`
	EarNotched    string     `json:"ear_notched"`
	Observations  string     `json:"observations"`
	ARV           bool       `json:"arv"`
	Xylazine      string     `json:"xylazine"`
	Dexa          string     `json:"dexa"`
	Melonex       string     `json:"melonex"`
	Atropine      string     `json:"atropine"`
	Enrodac       string     `json:"enrodac"`
	Prednisolone  string     `json:"prednisolone"`
	Ketamin       string     `json:"ketamin"`
	Stadren       string     `json:"stadren"`
	Dicrysticin   string     `json:"dicrysticin"`
}

// CareTakerReportInput is one day's monitoring entry
type CareTakerReportInput struct {
	FoodIntake   string     `json:"food_intake"`
	WaterIntake  string     `json:"water_intake"`
	Antibiotics  string     `json:"antibiotics"`
	Painkiller   string     `json:"painkiller"`
	Stool        string     `json:"stool"`
	Observations string     `json:"observations"`
	Date         *time.Time `json:"date"`
	Photo        string     `json:"-"`
}

// InterfaceDogService defines the case lifecycle interface
type InterfaceDogService interface {
	CreateCase(actor *JWTClaims, input IntakeInput) (*models.Dog, error)
	RecordInitialObservation(dogID uint, input ObservationInput) (*models.Dog, error)
	UpdateCatcherDetails(dogID uint, updates models.Catcher) (*models.Catcher, error)
	UpdateVetDetails(actor *JWTClaims, dogID uint, input VetUpdateInput) (*models.Dog, error)
	AddCareTakerReport(actor *JWTClaims, dogID uint, input CareTakerReportInput) (*models.Dog, error)
	Dispatch(dogID uint) (*models.Dog, error)
	Release(dogID uint, releaseLocation string) (*models.Dog, error)
	ListDogs(query models.PaginationQuery) ([]models.Dog, models.PaginationResult, error)
	GetDog(dogID uint) (*models.Dog, error)
	GetDogByKennelNumber(kennelNumber int) (*models.Dog, error)
	ListObservable() ([]models.Dog, error)
	ListDispatchable() ([]models.Dog, error)
	ListReleasable() ([]models.Dog, error)
	ListByCreatedRange(start, end time.Time) ([]models.Dog, error)
	DeleteDog(dogID uint) error
}

// DogService drives a case through its lifecycle. Every multi-record
// transition runs in a single transaction so a guard violation or storage
// failure never leaves partial state visible.
type DogService struct {
	DB          *gorm.DB
	Config      *config.Config
	CaseNumbers InterfaceCaseNumberService
	Kennels     InterfaceKennelService
	Notifier    CaseNotifier
}

// NewDogService creates a new dog case service
func NewDogService(db *gorm.DB, cfg *config.Config, caseNumbers InterfaceCaseNumberService, kennels InterfaceKennelService) *DogService {
	return &DogService{
		DB:          db,
		Config:      cfg,
		CaseNumbers: caseNumbers,
		Kennels:     kennels,
	}
}

// withGraph preloads the full case graph a consumer (UI, report export)
// needs: sub-records with their staff users, reports in insertion order, and
// the kennel.
func (s *DogService) withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("CatcherDetails").
		Preload("CatcherDetails.User").
		Preload("VetDetails").
		Preload("VetDetails.User").
		Preload("CareTakerDetails").
		Preload("CareTakerDetails.User").
		Preload("CareTakerDetails.Reports", func(db *gorm.DB) *gorm.DB {
			return db.Order("daily_monitorings.id")
		}).
		Preload("Kennel")
}

// CreateCase records an intake: a Catcher sub-record and a new Dog with a
// freshly generated case number, status Adopted, no kennel yet. Two intakes
// racing on the same daily sequence lose at the case_number unique index; the
// loser's transaction rolls back and the generate+insert unit is retried with
// a fresh sequence, so a collision is never surfaced to the caller.
func (s *DogService) CreateCase(actor *JWTClaims, input IntakeInput) (*models.Dog, error) {
	var dog *models.Dog
	var err error
	for attempt := 0; attempt < caseCreateAttempts; attempt++ {
		dog, err = s.createCase(actor, input)
		if err == nil {
			s.notify(dog)
			return dog, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, code.New(code.ErrCaseNumberExhausted)
}

func (s *DogService) createCase(actor *JWTClaims, input IntakeInput) (*models.Dog, error) {
	dog := &models.Dog{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		catcher := &models.Catcher{
			UserID:           &actor.UserID,
			CatchingLocation: input.CatchingLocation,
			LocationDetails:  input.LocationDetails,
			CatchingDate:     input.CatchingDate,
		}
		if err := tx.Create(catcher).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to create catcher record: %v", err)
		}

		caseNumber, err := s.CaseNumbers.Generate(tx)
		if err != nil {
			return err
		}

		dog.CaseNumber = caseNumber
		dog.Status = models.StatusAdopted
		dog.CatcherDetailsID = &catcher.ID
		dog.DogImage = input.SpotPhoto
		dog.DogAdditionalImages = input.AdditionalPhotos
		if err := tx.Create(dog).Error; err != nil {
			// A duplicate case number aborts the whole unit, Catcher included,
			// and is retried by the caller.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return code.Newf(code.ErrDatabase, "failed to create dog case: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dog, nil
}

// RecordInitialObservation houses the dog. The kennel is addressed by its
// human-facing number; when none is given the first free kennel is used.
// Status moves to Available only if both the kennel flip and the dog update
// succeed. A re-observation moves the dog: the previously held kennel is
// freed in the same transaction so it cannot stay occupied by a dog that no
// longer lives in it.
func (s *DogService) RecordInitialObservation(dogID uint, input ObservationInput) (*models.Dog, error) {
	var dog *models.Dog

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		found, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		dog = found

		if dog.KennelID != nil {
			if err := s.Kennels.Release(tx, *dog.KennelID); err != nil {
				return err
			}
			dog.KennelID = nil
		}

		var kennel *models.Kennel
		if input.KennelNumber != nil {
			kennel, err = s.Kennels.AssignByNumber(tx, *input.KennelNumber)
		} else {
			kennel, err = s.Kennels.AssignFirstFree(tx)
			if err == nil && kennel == nil {
				err = code.New(code.ErrNoKennelAvailable)
			}
		}
		if err != nil {
			return err
		}

		dog.KennelID = &kennel.ID
		dog.DogName = input.DogName
		dog.Breed = input.Breed
		dog.Age = input.Age
		dog.MainColor = input.MainColor
		dog.Description = input.Description
		dog.Gender = input.Gender
		dog.Aggression = input.Aggression
		dog.KennelPhoto = input.KennelPhoto
		dog.AdditionalKennelPhotos = input.AdditionalKennelPhotos
		dog.Status = models.StatusAvailable

		if err := tx.Save(dog).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to update dog case: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(dog)
	return dog, nil
}

// UpdateCatcherDetails updates a case's capture metadata in place
func (s *DogService) UpdateCatcherDetails(dogID uint, updates models.Catcher) (*models.Catcher, error) {
	var catcher models.Catcher

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		dog, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		if dog.CatcherDetailsID == nil {
			return code.New(code.ErrRecordNotFound)
		}
		if err := tx.First(&catcher, *dog.CatcherDetailsID).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to load catcher record: %v", err)
		}

		catcher.CatchingLocation = updates.CatchingLocation
		catcher.LocationDetails = updates.LocationDetails
		catcher.ReleasingLocation = updates.ReleasingLocation
		catcher.CatchingDate = updates.CatchingDate
		if err := tx.Save(&catcher).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to update catcher record: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &catcher, nil
}

// UpdateVetDetails applies one veterinary submission. Only vets and admins
// may call it. The first submission creates the Doctor record and moves the
// case to UnderTreatment; every later one updates it in place and moves the
// case to Operated.
func (s *DogService) UpdateVetDetails(actor *JWTClaims, dogID uint, input VetUpdateInput) (*models.Dog, error) {
	if !actor.Role.CanActAsVet() {
		return nil, code.New(code.ErrPermissionDenied)
	}

	var dog *models.Dog

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		found, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		dog = found

		var doctor models.Doctor
		firstVisit := dog.VetDetailsID == nil
		if !firstVisit {
			if err := tx.First(&doctor, *dog.VetDetailsID).Error; err != nil {
				return code.Newf(code.ErrDatabase, "failed to load vet record: %v", err)
			}
		} else {
			doctor.UserID = &actor.UserID
		}

		applyVetDetails(&doctor, input.Details)

		// The two photo groups are exclusive per call: a surgery upload wins
		// over a notes upload.
		if input.SurgeryPhoto != "" || len(input.AdditionalPhotos) > 0 {
			doctor.SurgeryPhoto = input.SurgeryPhoto
			doctor.AdditionalPhotos = input.AdditionalPhotos
		} else if input.SurgeryNotesPhoto != "" || len(input.AdditionalNotesPhotos) > 0 {
			doctor.SurgeryNotesPhoto = input.SurgeryNotesPhoto
			doctor.AdditionalNotesPhotos = input.AdditionalNotesPhotos
		}

		if err := tx.Save(&doctor).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to save vet record: %v", err)
		}

		if firstVisit {
			dog.VetDetailsID = &doctor.ID
			dog.Status = models.StatusUnderTreatment
		} else {
			dog.Status = models.StatusOperated
		}
		if err := tx.Save(dog).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to update dog case: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(dog)
	return dog, nil
}

func applyVetDetails(doctor *models.Doctor, d VetDetails) {
	doctor.DogWeight = d.DogWeight
	doctor.Temperature = d.Temperature
	doctor.SkinCondition = d.SkinCondition
	doctor.SurgeryDate = d.SurgeryDate
	doctor.Procedure = d.Procedure
	doctor.EarNotched = d.EarNotched
	doctor.Observations = d.Observations
	doctor.ARV = d.ARV
	doctor.Xylazine = d.Xylazine
	doctor.Dexa = d.Dexa
	doctor.Melonex = d.Melonex
	doctor.Atropine = d.Atropine
	doctor.Enrodac = d.Enrodac
	doctor.Prednisolone = d.Prednisolone
	doctor.Ketamin = d.Ketamin
	doctor.Stadren = d.Stadren
	doctor.Dicrysticin = d.Dicrysticin
}

// AddCareTakerReport appends one daily monitoring report. Only caretakers and
// admins may call it. The CareTaker sub-record is created lazily on the first
// report. When the report count first reaches two the case becomes
// FitForRelease; later reports keep accruing without touching the status
// again.
func (s *DogService) AddCareTakerReport(actor *JWTClaims, dogID uint, input CareTakerReportInput) (*models.Dog, error) {
	if !actor.Role.CanActAsCaretaker() {
		return nil, code.New(code.ErrPermissionDenied)
	}

	var dog *models.Dog
	becameFit := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		found, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		dog = found

		var careTaker models.CareTaker
		if dog.CareTakerDetailsID == nil {
			careTaker.UserID = &actor.UserID
			if err := tx.Create(&careTaker).Error; err != nil {
				return code.Newf(code.ErrDatabase, "failed to create caretaker record: %v", err)
			}
			dog.CareTakerDetailsID = &careTaker.ID
		} else if err := tx.First(&careTaker, *dog.CareTakerDetailsID).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to load caretaker record: %v", err)
		}

		report := models.DailyMonitoring{
			CareTakerID:  careTaker.ID,
			FoodIntake:   input.FoodIntake,
			WaterIntake:  input.WaterIntake,
			Antibiotics:  input.Antibiotics,
			Painkiller:   input.Painkiller,
			Stool:        input.Stool,
			Observations: input.Observations,
			Photo:        input.Photo,
			Date:         input.Date,
		}
		if err := tx.Create(&report).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to create daily report: %v", err)
		}

		var reportCount int64
		if err := tx.Model(&models.DailyMonitoring{}).
			Where("care_taker_id = ?", careTaker.ID).
			Count(&reportCount).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to count daily reports: %v", err)
		}

		if reportCount >= fitForReleaseReportCount && !statusAtLeastFit(dog.Status) {
			dog.Status = models.StatusFitForRelease
			becameFit = true
		}
		if err := tx.Save(dog).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to update dog case: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameFit {
		s.notify(dog)
	}
	return dog, nil
}

// statusAtLeastFit reports whether the case already reached FitForRelease or
// a later state, so additional reports never regress or re-trigger it.
func statusAtLeastFit(status models.DogStatus) bool {
	switch status {
	case models.StatusFitForRelease, models.StatusDispatched, models.StatusReleased:
		return true
	}
	return false
}

// Dispatch marks a case as ready for transport to the release site. The
// source workflow does not require FitForRelease first and neither do we.
func (s *DogService) Dispatch(dogID uint) (*models.Dog, error) {
	var dog *models.Dog

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		found, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		dog = found

		if dog.IsReleased {
			return code.New(code.ErrCaseAlreadyReleased)
		}

		dog.IsDispatched = true
		dog.Status = models.StatusDispatched
		if err := tx.Save(dog).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to dispatch dog: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(dog)
	return dog, nil
}

// Release is the terminal transition. The dog's release flags and the kennel
// occupancy flip in one transaction; a failure on either side rolls back
// both, so a released dog can never hold a phantom occupied kennel.
func (s *DogService) Release(dogID uint, releaseLocation string) (*models.Dog, error) {
	var dog *models.Dog

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		found, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}
		dog = found

		if dog.IsReleased {
			return code.New(code.ErrCaseAlreadyReleased)
		}

		heldKennel := dog.KennelID
		now := time.Now()

		dog.IsReleased = true
		dog.Status = models.StatusReleased
		dog.ReleaseDate = &now
		dog.ReleaseLocation = releaseLocation
		dog.KennelID = nil

		updates := map[string]interface{}{
			"is_released":      true,
			"status":           models.StatusReleased,
			"release_date":     &now,
			"release_location": releaseLocation,
			"kennel_id":        nil,
		}
		if err := tx.Model(&models.Dog{}).Where("id = ?", dog.ID).Updates(updates).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to release dog: %v", err)
		}

		if heldKennel != nil {
			if err := s.Kennels.Release(tx, *heldKennel); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(dog)
	return dog, nil
}

// ListDogs returns one page of cases with their full graphs
func (s *DogService) ListDogs(query models.PaginationQuery) ([]models.Dog, models.PaginationResult, error) {
	query.Normalize()

	var total int64
	if err := s.DB.Model(&models.Dog{}).Count(&total).Error; err != nil {
		return nil, models.PaginationResult{}, code.Newf(code.ErrDatabase, "failed to count dogs: %v", err)
	}

	order := "id"
	if query.Desc {
		order = "id DESC"
	}

	var dogs []models.Dog
	err := s.withGraph(s.DB).
		Order(order).
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&dogs).Error
	if err != nil {
		return nil, models.PaginationResult{}, code.Newf(code.ErrDatabase, "failed to list dogs: %v", err)
	}
	return dogs, models.NewPaginationResult(int(total), query.PageNum, query.PageSize), nil
}

// GetDog returns one case with its full graph
func (s *DogService) GetDog(dogID uint) (*models.Dog, error) {
	var dog models.Dog
	if err := s.withGraph(s.DB).First(&dog, dogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrCaseNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to load dog: %v", err)
	}
	return &dog, nil
}

// GetDogByKennelNumber returns the active (not yet released) case housed in
// the kennel with the given human-facing number.
func (s *DogService) GetDogByKennelNumber(kennelNumber int) (*models.Dog, error) {
	kennel, err := s.Kennels.GetByNumber(kennelNumber)
	if err != nil {
		return nil, err
	}

	var dog models.Dog
	err = s.withGraph(s.DB).
		Where("kennel_id = ? AND is_released = ?", kennel.ID, false).
		First(&dog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrKennelEmpty)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to load dog by kennel: %v", err)
	}
	return &dog, nil
}

// ListObservable returns cases awaiting their initial observation: captured
// but not yet housed.
func (s *DogService) ListObservable() ([]models.Dog, error) {
	var dogs []models.Dog
	err := s.withGraph(s.DB).
		Where("kennel_id IS NULL AND is_released = ? AND is_dispatched = ?", false, false).
		Find(&dogs).Error
	if err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to list observable dogs: %v", err)
	}
	return dogs, nil
}

// ListDispatchable returns cases whose surgery date is at least three days
// past and which have been neither dispatched nor released.
func (s *DogService) ListDispatchable() ([]models.Dog, error) {
	cutoff := time.Now().AddDate(0, 0, -dispatchWaitDays)

	var dogs []models.Dog
	err := s.withGraph(s.DB).
		Joins("JOIN doctors ON doctors.id = dogs.vet_details_id").
		Where("doctors.surgery_date IS NOT NULL AND doctors.surgery_date <= ?", cutoff).
		Where("dogs.is_released = ? AND dogs.is_dispatched = ?", false, false).
		Find(&dogs).Error
	if err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to list dispatchable dogs: %v", err)
	}
	return dogs, nil
}

// ListReleasable returns dispatched cases not yet released
func (s *DogService) ListReleasable() ([]models.Dog, error) {
	var dogs []models.Dog
	err := s.withGraph(s.DB).
		Where("is_dispatched = ? AND is_released = ?", true, false).
		Find(&dogs).Error
	if err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to list releasable dogs: %v", err)
	}
	return dogs, nil
}

// ListByCreatedRange returns cases created within [start, end], for reports
func (s *DogService) ListByCreatedRange(start, end time.Time) ([]models.Dog, error) {
	var dogs []models.Dog
	err := s.withGraph(s.DB).
		Where("dogs.created_at >= ? AND dogs.created_at <= ?", start, end).
		Find(&dogs).Error
	if err != nil {
		return nil, code.Newf(code.ErrDatabase, "failed to list dogs by date range: %v", err)
	}
	return dogs, nil
}

// DeleteDog removes a case. The kennel is freed if the case still held one.
func (s *DogService) DeleteDog(dogID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		dog, err := s.findDog(tx, dogID)
		if err != nil {
			return err
		}

		if dog.KennelID != nil {
			if err := s.Kennels.Release(tx, *dog.KennelID); err != nil {
				return err
			}
		}
		if err := tx.Delete(dog).Error; err != nil {
			return code.Newf(code.ErrDatabase, "failed to delete dog: %v", err)
		}
		return nil
	})
}

// findDog loads a case without its graph, mapping missing records to
// ErrCaseNotFound.
func (s *DogService) findDog(tx *gorm.DB, dogID uint) (*models.Dog, error) {
	var dog models.Dog
	if err := tx.First(&dog, dogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.ErrCaseNotFound)
		}
		return nil, code.Newf(code.ErrDatabase, "failed to load dog: %v", err)
	}
	return &dog, nil
}

func (s *DogService) notify(dog *models.Dog) {
	if s.Notifier != nil && dog != nil {
		s.Notifier.PublishCaseStatus(dog.CaseNumber, dog.Status)
	}
}
