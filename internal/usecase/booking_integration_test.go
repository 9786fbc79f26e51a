package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"clinic-queue/config"
	"clinic-queue/internal/delivery/dto"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/hub"
	"clinic-queue/internal/repository"
	"clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// End-to-end booking flow against a real PostgreSQL with a controllable token
// counter. The counter stub stands in for Redis so the allocate/insert loop
// can be driven into every branch: conflict then resync, exhaustion, and the
// degraded ledger-count path. Set TEST_DATABASE_DSN to run.

type stubTokenCounter struct {
	next   func(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error)
	resync func(ctx context.Context, doctorID uuid.UUID, dateKey string) error
}

func (s *stubTokenCounter) Next(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
	return s.next(ctx, doctorID, dateKey)
}

func (s *stubTokenCounter) Resync(ctx context.Context, doctorID uuid.UUID, dateKey string) error {
	if s.resync == nil {
		return nil
	}
	return s.resync(ctx, doctorID, dateKey)
}

func setupBookingDB(t *testing.T) *gorm.DB {
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
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.DoctorProfile{}, &entity.Appointment{}, &entity.AuditLog{}))
	return db
}

func newBookingUsecaseWithCounter(db *gorm.DB, counter TokenCounter, maxRetries int) BookingUsecase {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	apptRepo := repository.NewAppointmentRepository()
	doctorRepo := repository.NewDoctorProfileRepository()
	auditRepo := repository.NewAuditLogRepository()

	queueEvents := service.NewQueueEventService(log, doctorRepo, apptRepo, hub.New(log))
	mailer := service.NewMailerService(config.SMTPConfig{}, log)
	audit := service.NewAuditService(db, log, auditRepo)

	return NewBookingUsecase(db, log, apptRepo, doctorRepo, counter, queueEvents, mailer, audit, maxRetries)
}

func seedBookingDoctor(t *testing.T, db *gorm.DB) uuid.UUID {
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

func seedBookingPatient(t *testing.T, db *gorm.DB) (uuid.UUID, context.Context) {
	t.Helper()
	user := &entity.User{
		Role:     entity.RolePatient,
		Email:    fmt.Sprintf("pat-%s@test.local", uuid.NewString()),
		Password: "x",
		FullName: "Pat Test",
	}
	require.NoError(t, db.Create(user).Error)
	return user.ID, context.WithValue(context.Background(), middleware.UserIDKey, user.ID)
}

func bookingRequest(doctorID uuid.UUID, date string) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		DoctorID:    doctorID,
		Date:        date,
		PatientName: "Pat Test",
		PhoneNumber: "08123456789",
	}
}

func TestCreateBookingRetriesWhenCounterDrifts(t *testing.T) {
	db := setupBookingDB(t)
	doctorID := seedBookingDoctor(t, db)
	patientID, ctx := seedBookingPatient(t, db)

	// An existing booking already holds token 1 while the counter,
	// freshly restarted, believes it is behind.
	first := &entity.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		PatientName: "Pat Test",
		Date:        "2026-03-15",
		TokenNumber: 1,
		CheckInCode: checkInCode(doctorID, patientID, "2026-03-15", 1),
		Status:      entity.AppointmentStatusBooked,
	}
	require.NoError(t, db.Create(first).Error)

	synced := false
	counter := &stubTokenCounter{
		next: func(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
			if synced {
				return 2, nil
			}
			return 1, nil
		},
		resync: func(ctx context.Context, doctorID uuid.UUID, dateKey string) error {
			synced = true
			return nil
		},
	}

	uc := newBookingUsecaseWithCounter(db, counter, 3)
	resp, err := uc.CreateBooking(ctx, bookingRequest(doctorID, "2026-03-15"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TokenNumber)
	assert.True(t, synced, "conflict must trigger a counter resync")
}

func TestCreateBookingConflictWhenRetriesExhausted(t *testing.T) {
	db := setupBookingDB(t)
	doctorID := seedBookingDoctor(t, db)
	patientID, ctx := seedBookingPatient(t, db)

	taken := &entity.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		PatientName: "Pat Test",
		Date:        "2026-03-15",
		TokenNumber: 1,
		CheckInCode: checkInCode(doctorID, patientID, "2026-03-15", 1),
		Status:      entity.AppointmentStatusBooked,
	}
	require.NoError(t, db.Create(taken).Error)

	var attempts int32
	counter := &stubTokenCounter{
		// A counter stuck on a taken number never converges.
		next: func(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
			atomic.AddInt32(&attempts, 1)
			return 1, nil
		},
	}

	uc := newBookingUsecaseWithCounter(db, counter, 3)
	_, err := uc.CreateBooking(ctx, bookingRequest(doctorID, "2026-03-15"))
	require.ErrorIs(t, err, ErrTokenConflict)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))

	var count int64
	require.NoError(t, db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctorID, "2026-03-15").
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "no appointment may be written on exhaustion")
}

func TestCreateBookingFallsBackToLedgerCount(t *testing.T) {
	db := setupBookingDB(t)
	doctorID := seedBookingDoctor(t, db)
	patientID, ctx := seedBookingPatient(t, db)

	existing := &entity.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		PatientName: "Pat Test",
		Date:        "2026-03-15",
		TokenNumber: 1,
		CheckInCode: checkInCode(doctorID, patientID, "2026-03-15", 1),
		Status:      entity.AppointmentStatusBooked,
	}
	require.NoError(t, db.Create(existing).Error)

	counter := &stubTokenCounter{
		next: func(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
			return 0, fmt.Errorf("counter store unavailable")
		},
	}

	uc := newBookingUsecaseWithCounter(db, counter, 3)
	resp, err := uc.CreateBooking(ctx, bookingRequest(doctorID, "2026-03-15"))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TokenNumber, "ledger count plus one when the counter is down")
}

func TestConcurrentBookingsReceiveDenseTokens(t *testing.T) {
	db := setupBookingDB(t)
	doctorID := seedBookingDoctor(t, db)
	_, ctx := seedBookingPatient(t, db)

	var seq int64
	counter := &stubTokenCounter{
		next: func(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error) {
			return int(atomic.AddInt64(&seq, 1)), nil
		},
	}

	uc := newBookingUsecaseWithCounter(db, counter, 3)

	const patients = 8
	tokens := make([]int, 0, patients)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < patients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := uc.CreateBooking(ctx, bookingRequest(doctorID, "2026-03-15"))
			assert.NoError(t, err)
			if err != nil {
				return
			}
			mu.Lock()
			tokens = append(tokens, resp.TokenNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(tokens)
	require.Len(t, tokens, patients)
	for i, token := range tokens {
		assert.Equal(t, i+1, token, "token numbers must be dense with no gaps")
	}
}
