package repository

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"

	"clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// These tests need a real PostgreSQL; the guarded UPDATE semantics cannot be
// exercised against a fake. Set TEST_DATABASE_DSN to run them, e.g.
// "host=localhost user=postgres password=postgres dbname=clinic_test".

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.DoctorProfile{}, &entity.Appointment{}))
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &entity.User{
		Role:     entity.RoleDoctor,
		Email:    fmt.Sprintf("doc-%s@test.local", uuid.NewString()),
		Password: "x",
		FullName: "Dr. Test",
	}
	require.NoError(t, db.Create(user).Error)
	profile := &entity.DoctorProfile{
		UserID:         user.ID,
		Specialization: "general",
		Status:         entity.DoctorStatusApproved,
	}
	require.NoError(t, db.Create(profile).Error)
	return user.ID
}

func seedPatient(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &entity.User{
		Role:     entity.RolePatient,
		Email:    fmt.Sprintf("pat-%s@test.local", uuid.NewString()),
		Password: "x",
		FullName: "Pat Test",
	}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

func seedAppointment(t *testing.T, db *gorm.DB, doctorID, patientID uuid.UUID, dateKey string, token int) *entity.Appointment {
	t.Helper()
	appt := &entity.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		PatientName: "Pat Test",
		Date:        dateKey,
		TokenNumber: token,
		CheckInCode: fmt.Sprintf("CLINIC-DOC-%s-PAT-%s-%s-TKN-%d", doctorID, patientID, dateKey, token),
		Status:      entity.AppointmentStatusBooked,
	}
	require.NoError(t, db.Create(appt).Error)
	return appt
}

func TestTokenUniqueIndexRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAppointmentRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)

	dup := &entity.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		PatientName: "Pat Test",
		Date:        "2026-03-15",
		TokenNumber: 1,
		CheckInCode: fmt.Sprintf("CLINIC-DOC-%s-PAT-%s-2026-03-15-TKN-1-dup", doctorID, patientID),
		Status:      entity.AppointmentStatusBooked,
	}
	err := repo.Create(db, dup)
	require.Error(t, err)

	// Same patient, same doctor, next token is fine.
	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 2)

	// Same token on a different day is fine too.
	seedAppointment(t, db, doctorID, patientID, "2026-03-16", 1)
}

func TestAdvanceServingClampsAtIssuedCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoctorProfileRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	// Empty queue: the cursor must not move at all.
	_, moved, err := repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	assert.False(t, moved)

	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)
	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 2)

	got, moved, err := repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, 1, got)

	got, moved, err = repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, 2, got)

	// Cursor reached the issued count; further presses are no-ops.
	_, moved, err = repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestAdvanceServingRollsOverStaleDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoctorProfileRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	// Yesterday's cursor sits at 5.
	require.NoError(t, db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", doctorID).
		Updates(map[string]interface{}{"current_serving": 5, "serving_date": "2026-03-14"}).Error)

	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)

	got, moved, err := repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, 1, got, "a stale cursor rolls over to 1, not 6")
}

func TestAdvanceServingConcurrentPressesStayDense(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoctorProfileRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	const issued = 5
	for i := 1; i <= issued; i++ {
		seedAppointment(t, db, doctorID, patientID, "2026-03-15", i)
	}

	const presses = 12
	results := make(chan int, presses)
	var wg sync.WaitGroup
	for i := 0; i < presses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, moved, err := repo.AdvanceServing(db, doctorID, "2026-03-15")
			if err != nil {
				t.Error(err)
				return
			}
			if moved {
				results <- got
			}
		}()
	}
	wg.Wait()
	close(results)

	var values []int
	for v := range results {
		values = append(values, v)
	}
	sort.Ints(values)

	// Exactly one press per token, in a dense 1..issued sequence.
	require.Len(t, values, issued)
	for i, v := range values {
		assert.Equal(t, i+1, v)
	}
}

func TestMarkCheckedInAppliesOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAppointmentRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	appt := seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)

	rows, err := repo.MarkCheckedIn(db, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.MarkCheckedIn(db, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows, "second scan must be a no-op")

	found, err := repo.FindByCheckInCode(db, appt.CheckInCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entity.AppointmentStatusCheckedIn, found.Status)
}

func TestResetAllServingZeroesEveryCursor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDoctorProfileRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)
	_, moved, err := repo.AdvanceServing(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	require.True(t, moved)

	_, err = repo.ResetAllServing(db)
	require.NoError(t, err)

	profile := &entity.DoctorProfile{}
	require.NoError(t, db.Where("user_id = ?", doctorID).First(profile).Error)
	assert.Equal(t, 0, profile.CurrentServing)
	assert.Equal(t, "", profile.ServingDate)
}

func TestMaxTokenByDoctorAndDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAppointmentRepository()
	doctorID := seedDoctor(t, db)
	patientID := seedPatient(t, db)

	max, err := repo.MaxTokenByDoctorAndDate(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 0, max, "no bookings yet")

	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 1)
	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 2)
	seedAppointment(t, db, doctorID, patientID, "2026-03-15", 3)

	max, err = repo.MaxTokenByDoctorAndDate(db, doctorID, "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 3, max)
}
