package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GoServices-Admin/GoServices-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Institution{},
		&models.Service{},
		&models.ServiceRequest{},
		&models.RequestHistoryEntry{},
		&models.RequestNote{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedService creates an institution with one service and a requesting user.
func seedService(t *testing.T, db *gorm.DB, enabled bool) (*models.User, *models.Service) {
	t.Helper()

	user := &models.User{
		Active:   true,
		Username: "requester",
		Email:    "requester@example.com",
	}
	require.NoError(t, db.Create(user).Error)

	institution := &models.Institution{Name: "city-lab", Enabled: true}
	require.NoError(t, db.Create(institution).Error)

	service := &models.Service{
		Name:          "water analysis",
		Kind:          models.ServiceKindAnalysis,
		Enabled:       enabled,
		InstitutionID: institution.ID,
	}
	require.NoError(t, db.Create(service).Error)

	return user, service
}

func TestCreate(t *testing.T) {
	t.Run("nil database", func(t *testing.T) {
		_, err := Create(nil, 1, 1, "t", "d")
		assert.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("unknown service", func(t *testing.T) {
		db := setupTestDB(t)
		user, _ := seedService(t, db, true)

		_, err := Create(db, user.ID, 99999, "t", "d")
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("disabled service", func(t *testing.T) {
		db := setupTestDB(t)
		user, service := seedService(t, db, false)

		_, err := Create(db, user.ID, service.ID, "t", "d")
		assert.ErrorIs(t, err, ErrServiceDisabled)
	})

	t.Run("institution is derived from the service", func(t *testing.T) {
		db := setupTestDB(t)
		user, service := seedService(t, db, true)

		created, err := Create(db, user.ID, service.ID, "broken pipe", "the pipe is broken")
		require.NoError(t, err)

		assert.Equal(t, models.StatusInProcess, created.Status)
		assert.Equal(t, service.InstitutionID, created.InstitutionID)
		assert.Equal(t, user.ID, created.UserID)
		assert.Nil(t, created.ClosedAt)
	})
}

func TestTransition(t *testing.T) {
	db := setupTestDB(t)
	user, service := seedService(t, db, true)

	created, err := Create(db, user.ID, service.ID, "broken pipe", "the pipe is broken")
	require.NoError(t, err)

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := Transition(db, created.ID, models.RequestStatus("archived"), "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := Transition(db, 99999, models.StatusAccepted, "")
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("same status is a no-op without history", func(t *testing.T) {
		changed, err := Transition(db, created.ID, models.StatusInProcess, "still new")
		require.NoError(t, err)
		assert.False(t, changed)

		entries, err := History(db, created.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("transition appends exactly one history entry", func(t *testing.T) {
		changed, err := Transition(db, created.ID, models.StatusAccepted, "approved by lab")
		require.NoError(t, err)
		assert.True(t, changed)

		entries, err := History(db, created.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.StatusAccepted, entries[0].Status)
		assert.Equal(t, "approved by lab", entries[0].Observation)
	})

	t.Run("closed statuses set closed_at", func(t *testing.T) {
		changed, err := Transition(db, created.ID, models.StatusFinished, "done")
		require.NoError(t, err)
		assert.True(t, changed)

		updated, err := Get(db, created.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.ClosedAt)

		// reopening clears it again
		_, err = Transition(db, created.ID, models.StatusInProcess, "reopened")
		require.NoError(t, err)

		updated, err = Get(db, created.ID)
		require.NoError(t, err)
		assert.Nil(t, updated.ClosedAt)
	})

	t.Run("history preserves the full trajectory in order", func(t *testing.T) {
		entries, err := History(db, created.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		trajectory := []models.RequestStatus{entries[0].Status, entries[1].Status, entries[2].Status}
		assert.Equal(t, []models.RequestStatus{
			models.StatusAccepted,
			models.StatusFinished,
			models.StatusInProcess,
		}, trajectory)
	})
}

func TestNotes(t *testing.T) {
	db := setupTestDB(t)
	user, service := seedService(t, db, true)

	created, err := Create(db, user.ID, service.ID, "broken pipe", "the pipe is broken")
	require.NoError(t, err)

	t.Run("unknown request", func(t *testing.T) {
		_, err := AddNote(db, 99999, user.ID, "hello")
		assert.ErrorIs(t, err, ErrRequestNotFound)

		_, err = Notes(db, 99999)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("notes never touch the status", func(t *testing.T) {
		_, err := AddNote(db, created.ID, user.ID, "first note")
		require.NoError(t, err)

		_, err = AddNote(db, created.ID, user.ID, "second note")
		require.NoError(t, err)

		notes, err := Notes(db, created.ID)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "first note", notes[0].Note)
		assert.Equal(t, "second note", notes[1].Note)

		current, err := Get(db, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProcess, current.Status)

		entries, err := History(db, created.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	user, service := seedService(t, db, true)

	for i := 0; i < 15; i++ {
		_, err := Create(db, user.ID, service.ID, "request", "body")
		require.NoError(t, err)
	}

	t.Run("by institution with pagination", func(t *testing.T) {
		requests, total, err := ListByInstitution(db, service.InstitutionID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 15, total)
		assert.Len(t, requests, 10)

		requests, total, err = ListByInstitution(db, service.InstitutionID, 2, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 15, total)
		assert.Len(t, requests, 5)
	})

	t.Run("by user", func(t *testing.T) {
		requests, total, err := ListByUser(db, user.ID, 1, 100)
		require.NoError(t, err)
		assert.EqualValues(t, 15, total)
		assert.Len(t, requests, 15)
	})

	t.Run("empty for strangers", func(t *testing.T) {
		requests, total, err := ListByUser(db, 99999, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, requests)
	})
}
