package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

func TestCreateKennelNumbersAreMonotonic(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	for want := 1; want <= 3; want++ {
		kennel, err := svc.CreateKennel()
		require.NoError(t, err)
		assert.Equal(t, want, kennel.Number)
		assert.False(t, kennel.IsOccupied)
	}
}

func TestAssignByNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	created, err := svc.CreateKennel()
	require.NoError(t, err)

	kennel, err := svc.AssignByNumber(nil, created.Number)
	require.NoError(t, err)
	assert.True(t, kennel.IsOccupied)

	// A second assignment of the same kennel must be refused.
	_, err = svc.AssignByNumber(nil, created.Number)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelOccupied))
}

func TestAssignByNumberMissingKennel(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	_, err := svc.AssignByNumber(nil, 42)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelNotFound))
}

func TestAssignFirstFreePicksLowestNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	for i := 0; i < 3; i++ {
		_, err := svc.CreateKennel()
		require.NoError(t, err)
	}
	_, err := svc.AssignByNumber(nil, 1)
	require.NoError(t, err)

	kennel, err := svc.AssignFirstFree(nil)
	require.NoError(t, err)
	require.NotNil(t, kennel)
	assert.Equal(t, 2, kennel.Number)
}

func TestAssignFirstFreeSingleWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	_, err := svc.CreateKennel()
	require.NoError(t, err)

	// Two assignments racing for the one free kennel: the guarded update
	// lets exactly one through, the other sees an exhausted pool.
	results := make([]*models.Kennel, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.AssignFirstFree(nil)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAssignFirstFreeEmptyPool(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	kennel, err := svc.AssignFirstFree(nil)
	require.NoError(t, err)
	assert.Nil(t, kennel)
}

func TestReleaseKennel(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	created, err := svc.CreateKennel()
	require.NoError(t, err)
	_, err = svc.AssignByNumber(nil, created.Number)
	require.NoError(t, err)

	require.NoError(t, svc.Release(nil, created.ID))

	freed, err := svc.GetByNumber(created.Number)
	require.NoError(t, err)
	assert.False(t, freed.IsOccupied)

	// Releasing an already-free kennel is a no-op.
	require.NoError(t, svc.Release(nil, created.ID))
}

func TestReleaseMissingKennel(t *testing.T) {
	db := newTestDB(t)
	svc := NewKennelService(db, testConfig())

	err := svc.Release(nil, 42)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrKennelNotFound))
}
