package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.DogStatus
}

func (n *recordingNotifier) PublishCaseStatus(caseNumber string, status models.DogStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, status)
}

func (n *recordingNotifier) statuses() []models.DogStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.DogStatus(nil), n.events...)
}

func newDogService(t *testing.T, db *gorm.DB) (*DogService, *recordingNotifier) {
	t.Helper()

	cfg := testConfig()
	notifier := &recordingNotifier{}
	svc := NewDogService(db, cfg, NewCaseNumberService(db), NewKennelService(db, cfg))
	svc.Notifier = notifier
	return svc, notifier
}

func createKennels(t *testing.T, db *gorm.DB, count int) {
	t.Helper()
	kennels := NewKennelService(db, testConfig())
	for i := 0; i < count; i++ {
		_, err := kennels.CreateKennel()
		require.NoError(t, err)
	}
}

func intakeDog(t *testing.T, svc *DogService, catcher *models.User) *models.Dog {
	t.Helper()
	dog, err := svc.CreateCase(actorFor(catcher), IntakeInput{
		CatchingLocation: "Shivaji Nagar",
		LocationDetails:  "behind the bus depot",
	})
	require.NoError(t, err)
	return dog
}

func TestCreateCase(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)

	assert.NotEmpty(t, dog.CaseNumber)
	assert.Equal(t, models.StatusAdopted, dog.Status)
	assert.Nil(t, dog.KennelID)
	require.NotNil(t, dog.CatcherDetailsID)

	var catcherRecord models.Catcher
	require.NoError(t, db.First(&catcherRecord, *dog.CatcherDetailsID).Error)
	assert.Equal(t, "Shivaji Nagar", catcherRecord.CatchingLocation)
	require.NotNil(t, catcherRecord.UserID)
	assert.Equal(t, catcher.ID, *catcherRecord.UserID)
}

// scriptedCaseNumbers hands out a fixed series of case numbers, cycling when
// the series runs out, to force collisions the real generator would retry.
type scriptedCaseNumbers struct {
	numbers []string
	calls   int
}

func (s *scriptedCaseNumbers) Generate(tx *gorm.DB) (string, error) {
	number := s.numbers[s.calls%len(s.numbers)]
	s.calls++
	return number, nil
}

func TestCreateCaseRetriesOnDuplicateCaseNumber(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	// A case already holds the number the generator hands out first, as
	// happens when two intakes derive the same daily sequence.
	require.NoError(t, db.Create(&models.Dog{
		CaseNumber: "26-SEP-01-01",
		Status:     models.StatusAdopted,
	}).Error)
	numbers := &scriptedCaseNumbers{numbers: []string{"26-SEP-01-01", "26-SEP-01-02"}}
	svc.CaseNumbers = numbers

	dog, err := svc.CreateCase(actorFor(catcher), IntakeInput{CatchingLocation: "Shivaji Nagar"})
	require.NoError(t, err)
	assert.Equal(t, "26-SEP-01-02", dog.CaseNumber)
	assert.Equal(t, 2, numbers.calls)

	// The losing attempt's transaction must have taken its Catcher row with it.
	var catchers int64
	require.NoError(t, db.Model(&models.Catcher{}).Count(&catchers).Error)
	assert.EqualValues(t, 1, catchers)
}

func TestCreateCaseGivesUpAfterRepeatedCollisions(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	require.NoError(t, db.Create(&models.Dog{
		CaseNumber: "26-SEP-01-01",
		Status:     models.StatusAdopted,
	}).Error)
	svc.CaseNumbers = &scriptedCaseNumbers{numbers: []string{"26-SEP-01-01"}}

	_, err := svc.CreateCase(actorFor(catcher), IntakeInput{CatchingLocation: "Shivaji Nagar"})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseNumberExhausted))

	var catchers int64
	require.NoError(t, db.Model(&models.Catcher{}).Count(&catchers).Error)
	assert.Zero(t, catchers)
}

func TestFullLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc, notifier := newDogService(t, db)
	createKennels(t, db, 2)

	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)
	vet := createTestUser(t, db, "dr-joshi", models.RoleVet)
	caretaker := createTestUser(t, db, "sunita", models.RoleCaretaker)

	dog := intakeDog(t, svc, catcher)

	// Housing moves the case to Available and occupies a kennel.
	dog, err := svc.RecordInitialObservation(dog.ID, ObservationInput{
		DogName:   "Moti",
		Breed:     "Indie",
		MainColor: "brown",
		Gender:    "male",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, dog.Status)
	require.NotNil(t, dog.KennelID)

	var kennel models.Kennel
	require.NoError(t, db.First(&kennel, *dog.KennelID).Error)
	assert.True(t, kennel.IsOccupied)

	// First vet visit creates the medical record and starts treatment.
	dog, err = svc.UpdateVetDetails(actorFor(vet), dog.ID, VetUpdateInput{
		Details: VetDetails{DogWeight: 14.5, Temperature: 38.2},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderTreatment, dog.Status)
	require.NotNil(t, dog.VetDetailsID)

	// Second visit records the surgery and marks the case Operated.
	surgery := time.Now().AddDate(0, 0, -1)
	dog, err = svc.UpdateVetDetails(actorFor(vet), dog.ID, VetUpdateInput{
		Details: VetDetails{DogWeight: 14.5, SurgeryDate: &surgery, Procedure: "spay"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperated, dog.Status)

	// One report is not enough for FitForRelease.
	dog, err = svc.AddCareTakerReport(actorFor(caretaker), dog.ID, CareTakerReportInput{
		FoodIntake: "normal", WaterIntake: "normal",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperated, dog.Status)

	// The second report flips the case to FitForRelease.
	dog, err = svc.AddCareTakerReport(actorFor(caretaker), dog.ID, CareTakerReportInput{
		FoodIntake: "normal", WaterIntake: "normal",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFitForRelease, dog.Status)

	// Extra reports accrue without touching the status again.
	dog, err = svc.AddCareTakerReport(actorFor(caretaker), dog.ID, CareTakerReportInput{
		FoodIntake: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFitForRelease, dog.Status)

	dog, err = svc.Dispatch(dog.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, dog.Status)
	assert.True(t, dog.IsDispatched)

	heldKennel := *dog.KennelID
	dog, err = svc.Release(dog.ID, "Shivaji Nagar")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReleased, dog.Status)
	assert.True(t, dog.IsReleased)
	assert.Nil(t, dog.KennelID)
	require.NotNil(t, dog.ReleaseDate)

	// The kennel is free for the next case.
	require.NoError(t, db.First(&kennel, heldKennel).Error)
	assert.False(t, kennel.IsOccupied)

	statuses := notifier.statuses()
	assert.Equal(t, []models.DogStatus{
		models.StatusAdopted,
		models.StatusAvailable,
		models.StatusUnderTreatment,
		models.StatusOperated,
		models.StatusFitForRelease,
		models.StatusDispatched,
		models.StatusReleased,
	}, statuses)
}

func TestVetUpdateForbiddenForCaretaker(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)
	caretaker := createTestUser(t, db, "sunita", models.RoleCaretaker)

	dog := intakeDog(t, svc, catcher)

	_, err := svc.UpdateVetDetails(actorFor(caretaker), dog.ID, VetUpdateInput{})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrPermissionDenied))

	// The refused call must leave no medical record behind.
	var doctors int64
	require.NoError(t, db.Model(&models.Doctor{}).Count(&doctors).Error)
	assert.Zero(t, doctors)
}

func TestVetUpdateAllowedForAdmin(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)
	admin := createTestUser(t, db, "boss", models.RoleAdmin)

	dog := intakeDog(t, svc, catcher)

	updated, err := svc.UpdateVetDetails(actorFor(admin), dog.ID, VetUpdateInput{
		Details: VetDetails{DogWeight: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderTreatment, updated.Status)
}

func TestObservationOccupiedKennelConflict(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 1)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	first := intakeDog(t, svc, catcher)
	second := intakeDog(t, svc, catcher)

	kennelNumber := 1
	_, err := svc.RecordInitialObservation(first.ID, ObservationInput{KennelNumber: &kennelNumber})
	require.NoError(t, err)

	_, err = svc.RecordInitialObservation(second.ID, ObservationInput{KennelNumber: &kennelNumber})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelOccupied))

	// The failed transition must not have touched the second case.
	reloaded, err := svc.GetDog(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAdopted, reloaded.Status)
	assert.Nil(t, reloaded.KennelID)
}

func TestObservationNoKennelAvailable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)

	_, err := svc.RecordInitialObservation(dog.ID, ObservationInput{})
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrNoKennelAvailable))
}

func TestDispatchReleasedCaseConflict(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 1)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)
	dog, err := svc.RecordInitialObservation(dog.ID, ObservationInput{})
	require.NoError(t, err)
	_, err = svc.Release(dog.ID, "release site")
	require.NoError(t, err)

	_, err = svc.Dispatch(dog.ID)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseAlreadyReleased))

	_, err = svc.Release(dog.ID, "release site")
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseAlreadyReleased))
}

// brokenKennelPool wraps the real kennel service with a Release that always
// fails, standing in for a storage fault mid-transaction.
type brokenKennelPool struct {
	InterfaceKennelService
}

func (p *brokenKennelPool) Release(tx *gorm.DB, kennelID uint) error {
	return code.Newf(code.ErrDatabase, "kennel release failed")
}

func TestReleaseFailureLeavesCaseAndKennelUntouched(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 1)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)
	dog, err := svc.RecordInitialObservation(dog.ID, ObservationInput{})
	require.NoError(t, err)
	heldKennel := *dog.KennelID

	svc.Kennels = &brokenKennelPool{InterfaceKennelService: svc.Kennels}

	_, err = svc.Release(dog.ID, "Shivaji Nagar")
	require.Error(t, err)

	// The failed kennel release must roll back the dog's release too: no
	// half-released case, no freed kennel.
	var reloaded models.Dog
	require.NoError(t, db.First(&reloaded, dog.ID).Error)
	assert.False(t, reloaded.IsReleased)
	assert.Equal(t, models.StatusAvailable, reloaded.Status)
	require.NotNil(t, reloaded.KennelID)
	assert.Equal(t, heldKennel, *reloaded.KennelID)

	var kennel models.Kennel
	require.NoError(t, db.First(&kennel, heldKennel).Error)
	assert.True(t, kennel.IsOccupied)
}

func TestReObservationMovesDogAndFreesKennel(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 2)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)
	firstKennel := 1
	dog, err := svc.RecordInitialObservation(dog.ID, ObservationInput{KennelNumber: &firstKennel})
	require.NoError(t, err)
	previousKennel := *dog.KennelID

	// Observing the housed dog again into another kennel moves it; the
	// first kennel must not stay occupied by a dog that left it.
	secondKennel := 2
	dog, err = svc.RecordInitialObservation(dog.ID, ObservationInput{KennelNumber: &secondKennel})
	require.NoError(t, err)
	require.NotNil(t, dog.KennelID)
	assert.NotEqual(t, previousKennel, *dog.KennelID)

	var freed, taken models.Kennel
	require.NoError(t, db.First(&freed, previousKennel).Error)
	assert.False(t, freed.IsOccupied)
	require.NoError(t, db.First(&taken, *dog.KennelID).Error)
	assert.True(t, taken.IsOccupied)
}

func TestGetDogByKennelNumber(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 2)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)
	kennelNumber := 1
	_, err := svc.RecordInitialObservation(dog.ID, ObservationInput{KennelNumber: &kennelNumber})
	require.NoError(t, err)

	found, err := svc.GetDogByKennelNumber(1)
	require.NoError(t, err)
	assert.Equal(t, dog.ID, found.ID)

	_, err = svc.GetDogByKennelNumber(2)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelEmpty))

	_, err = svc.GetDogByKennelNumber(42)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelNotFound))
}

func TestListDogsPagination(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	var last *models.Dog
	for i := 0; i < 5; i++ {
		last = intakeDog(t, svc, catcher)
	}

	dogs, page, err := svc.ListDogs(models.PaginationQuery{PageNum: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, dogs, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.PageNum)
	assert.Equal(t, 2, page.PageSize)

	newestFirst, _, err := svc.ListDogs(models.PaginationQuery{PageNum: 1, PageSize: 2, Desc: true})
	require.NoError(t, err)
	require.Len(t, newestFirst, 2)
	assert.Equal(t, last.ID, newestFirst[0].ID)

	lastPage, _, err := svc.ListDogs(models.PaginationQuery{PageNum: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, lastPage, 1)
}

func TestListObservable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 1)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	pending := intakeDog(t, svc, catcher)
	housed := intakeDog(t, svc, catcher)
	_, err := svc.RecordInitialObservation(housed.ID, ObservationInput{})
	require.NoError(t, err)

	observable, err := svc.ListObservable()
	require.NoError(t, err)
	require.Len(t, observable, 1)
	assert.Equal(t, pending.ID, observable[0].ID)
}

func TestListDispatchable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 2)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)
	vet := createTestUser(t, db, "dr-joshi", models.RoleVet)

	ready := intakeDog(t, svc, catcher)
	_, err := svc.RecordInitialObservation(ready.ID, ObservationInput{})
	require.NoError(t, err)
	oldSurgery := time.Now().AddDate(0, 0, -4)
	_, err = svc.UpdateVetDetails(actorFor(vet), ready.ID, VetUpdateInput{
		Details: VetDetails{SurgeryDate: &oldSurgery},
	})
	require.NoError(t, err)

	recovering := intakeDog(t, svc, catcher)
	_, err = svc.RecordInitialObservation(recovering.ID, ObservationInput{})
	require.NoError(t, err)
	recentSurgery := time.Now().AddDate(0, 0, -1)
	_, err = svc.UpdateVetDetails(actorFor(vet), recovering.ID, VetUpdateInput{
		Details: VetDetails{SurgeryDate: &recentSurgery},
	})
	require.NoError(t, err)

	dispatchable, err := svc.ListDispatchable()
	require.NoError(t, err)
	require.Len(t, dispatchable, 1)
	assert.Equal(t, ready.ID, dispatchable[0].ID)
}

func TestListReleasable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 2)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dispatched := intakeDog(t, svc, catcher)
	_, err := svc.RecordInitialObservation(dispatched.ID, ObservationInput{})
	require.NoError(t, err)
	_, err = svc.Dispatch(dispatched.ID)
	require.NoError(t, err)

	_ = intakeDog(t, svc, catcher)

	releasable, err := svc.ListReleasable()
	require.NoError(t, err)
	require.Len(t, releasable, 1)
	assert.Equal(t, dispatched.ID, releasable[0].ID)
}

func TestDeleteDogFreesKennel(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)
	createKennels(t, db, 1)
	catcher := createTestUser(t, db, "ramesh", models.RoleCatcher)

	dog := intakeDog(t, svc, catcher)
	dog, err := svc.RecordInitialObservation(dog.ID, ObservationInput{})
	require.NoError(t, err)
	heldKennel := *dog.KennelID

	require.NoError(t, svc.DeleteDog(dog.ID))

	var kennel models.Kennel
	require.NoError(t, db.First(&kennel, heldKennel).Error)
	assert.False(t, kennel.IsOccupied)

	_, err = svc.GetDog(dog.ID)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseNotFound))
}

func TestCaseNotFound(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDogService(t, db)

	_, err := svc.GetDog(42)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseNotFound))

	_, err = svc.Dispatch(42)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseNotFound))
}
