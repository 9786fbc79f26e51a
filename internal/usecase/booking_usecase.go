package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-queue/internal/converter"
	"clinic-queue/internal/delivery/dto"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/domain/repository"
	"clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotApproved  = errors.New("doctor is not accepting appointments")
	ErrTokenConflict      = errors.New("could not allocate a queue token, please retry")
	ErrInvalidCheckInCode = errors.New("invalid code")
	ErrNoAppointmentToday = errors.New("no appointment found for today")
)

// TokenCounter hands out sequential token numbers per (doctor, date) and can
// resynchronize a counter from the appointment ledger after a conflict.
type TokenCounter interface {
	Next(ctx context.Context, doctorID uuid.UUID, dateKey string) (int, error)
	Resync(ctx context.Context, doctorID uuid.UUID, dateKey string) error
}

type BookingUsecase interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	CheckIn(ctx context.Context, req *dto.CheckInRequest) (*dto.CheckInResponse, error)
	ListTodayAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error)
	MyLatestToday(ctx context.Context) (*dto.BookingResponse, error)
}

type bookingUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	apptRepo        repository.AppointmentRepository
	doctorRepo      repository.DoctorProfileRepository
	tokenCounter    TokenCounter
	queueEvents     *service.QueueEventService
	mailer          *service.MailerService
	audit           service.AuditService
	maxTokenRetries int
	now             func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	tokenCounter TokenCounter,
	queueEvents *service.QueueEventService,
	mailer *service.MailerService,
	audit service.AuditService,
	maxTokenRetries int,
) BookingUsecase {
	if maxTokenRetries <= 0 {
		maxTokenRetries = 3
	}
	return &bookingUsecase{
		db:              db,
		log:             log,
		apptRepo:        apptRepo,
		doctorRepo:      doctorRepo,
		tokenCounter:    tokenCounter,
		queueEvents:     queueEvents,
		mailer:          mailer,
		audit:           audit,
		maxTokenRetries: maxTokenRetries,
		now:             time.Now,
	}
}

// CreateBooking allocates the next token for (doctor, date) and records the
// appointment.
//
// Flow:
// 1. Validate doctor exists and is approved
// 2. Redis atomic increment-and-fetch for the token number
// 3. Insert appointment; the (doctor_id, date, token_number) unique index
//    rejects any counter drift
// 4. On a duplicate token: resync the counter from the ledger, retry bounded
// 5. Broadcast a fresh queue snapshot, fire the confirmation mail async
func (u *bookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	dateKey, err := entity.NormalizeDateKey(req.Date)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved() {
		return nil, ErrDoctorNotApproved
	}

	appointment, err := u.allocateAndInsert(ctx, req, patientID, dateKey)
	if err != nil {
		return nil, err
	}

	// Broadcast from post-insert store state, never from what we think we
	// just wrote.
	u.queueEvents.PublishUpdated(ctx, u.db, req.DoctorID, dateKey)

	if req.PatientEmail != "" {
		go u.mailer.SendBookingConfirmation(req.PatientEmail, appointment.PatientName, appointment.TokenNumber, appointment.CheckInCode)
	}

	if err := u.audit.LogCreate(ctx, u.db.WithContext(ctx), &patientID, entity.AuditActionBookingCreate, "appointment", appointment.ID.String(), map[string]interface{}{
		"doctor_id":    appointment.DoctorID,
		"date":         appointment.Date,
		"token_number": appointment.TokenNumber,
	}); err != nil {
		u.log.Warnf("Audit write failed for booking %s (non-fatal): %+v", appointment.ID, err)
	}

	u.log.Infof("Booking created: id=%s, doctor=%s, date=%s, token=%d", appointment.ID, appointment.DoctorID, dateKey, appointment.TokenNumber)
	return converter.BookingToResponse(appointment), nil
}

// allocateAndInsert runs the bounded allocate/insert loop. Token numbers come
// from Redis; when Redis is down the ledger count serves as a degraded
// source and the unique index carries the full correctness burden.
func (u *bookingUsecase) allocateAndInsert(ctx context.Context, req *dto.CreateBookingRequest, patientID uuid.UUID, dateKey string) (*entity.Appointment, error) {
	for attempt := 0; attempt < u.maxTokenRetries; attempt++ {
		token, err := u.tokenCounter.Next(ctx, req.DoctorID, dateKey)
		if err != nil {
			u.log.Warnf("Token counter unavailable for doctor %s, falling back to ledger count: %+v", req.DoctorID, err)
			count, countErr := u.apptRepo.CountByDoctorAndDate(u.db.WithContext(ctx), req.DoctorID, dateKey)
			if countErr != nil {
				return nil, countErr
			}
			token = int(count) + 1
		}

		appointment := &entity.Appointment{
			DoctorID:    req.DoctorID,
			PatientID:   patientID,
			PatientName: req.PatientName,
			PhoneNumber: req.PhoneNumber,
			Problem:     req.Problem,
			Date:        dateKey,
			TokenNumber: token,
			CheckInCode: checkInCode(req.DoctorID, patientID, dateKey, token),
			Status:      entity.AppointmentStatusBooked,
		}

		err = u.apptRepo.Create(u.db.WithContext(ctx), appointment)
		if err == nil {
			return appointment, nil
		}

		if isDuplicateKeyError(err, "doctor_date_token") {
			u.log.Warnf("Token %d already taken for doctor %s on %s, resyncing counter (attempt %d)", token, req.DoctorID, dateKey, attempt+1)
			if syncErr := u.tokenCounter.Resync(ctx, req.DoctorID, dateKey); syncErr != nil {
				u.log.Warnf("Counter resync failed: %+v", syncErr)
			}
			continue
		}

		// Storage failure after an allocation: put the counter back in step
		// with the ledger so no token number goes unused.
		syncCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if syncErr := u.tokenCounter.Resync(syncCtx, req.DoctorID, dateKey); syncErr != nil {
			u.log.Errorf("Failed to resync counter after insert failure for doctor %s: %+v", req.DoctorID, syncErr)
		}
		cancel()

		u.log.Errorf("Failed to insert appointment: %+v", err)
		return nil, err
	}

	return nil, ErrTokenConflict
}

// CheckIn validates a scanned code and marks the appointment as arrived.
// Re-scanning a code that already checked in (or was completed or skipped
// afterwards) is an idempotent success: the desk gets the patient's name
// back and nothing changes.
func (u *bookingUsecase) CheckIn(ctx context.Context, req *dto.CheckInRequest) (*dto.CheckInResponse, error) {
	appointment, err := u.apptRepo.FindByCheckInCode(u.db.WithContext(ctx), req.Code)
	if err != nil {
		u.log.Warnf("Failed to look up check-in code: %+v", err)
		return nil, err
	}
	if appointment == nil {
		// Same answer for malformed and unknown codes.
		return nil, ErrInvalidCheckInCode
	}

	if appointment.IsBooked() {
		rows, err := u.apptRepo.MarkCheckedIn(u.db.WithContext(ctx), appointment.ID)
		if err != nil {
			u.log.Warnf("Failed to check in appointment %s: %+v", appointment.ID, err)
			return nil, err
		}
		if rows == 0 {
			// Another scan won the race; that is the idempotent case.
			u.log.Debugf("Appointment %s already checked in concurrently", appointment.ID)
		} else {
			var actor *uuid.UUID
			if id, ok := middleware.GetUserIDFromContext(ctx); ok {
				actor = &id
			}
			if err := u.audit.LogUpdate(ctx, u.db.WithContext(ctx), actor, entity.AuditActionAppointmentCheckIn, "appointment", appointment.ID.String(),
				map[string]interface{}{"status": entity.AppointmentStatusBooked},
				map[string]interface{}{"status": entity.AppointmentStatusCheckedIn},
			); err != nil {
				u.log.Warnf("Audit write failed for check-in %s (non-fatal): %+v", appointment.ID, err)
			}
		}
	}

	return &dto.CheckInResponse{
		PatientName: appointment.PatientName,
		TokenNumber: appointment.TokenNumber,
	}, nil
}

// ListTodayAppointments returns the doctor's ledger for today ordered by
// token number ascending.
func (u *bookingUsecase) ListTodayAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error) {
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	dateKey := entity.DateKey(u.now())
	appointments, err := u.apptRepo.ListByDoctorAndDate(u.db.WithContext(ctx), doctorID, dateKey)
	if err != nil {
		u.log.Warnf("Failed to list appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// MyLatestToday returns the calling patient's most recent booking for today.
func (u *bookingUsecase) MyLatestToday(ctx context.Context) (*dto.BookingResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	dateKey := entity.DateKey(u.now())
	appointment, err := u.apptRepo.FindLatestByPatientAndDate(u.db.WithContext(ctx), patientID, dateKey)
	if err != nil {
		u.log.Warnf("Failed to find today's appointment for patient %s: %+v", patientID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNoAppointmentToday
	}

	return converter.BookingToResponse(appointment), nil
}

// checkInCode derives the human-inspectable code printed on the booking
// confirmation. Deterministic and unique per booking across days, not a
// secret. The date key is part of the derivation so the code stays unique
// when the same patient books the same doctor with the same token number
// on another day.
func checkInCode(doctorID, patientID uuid.UUID, dateKey string, tokenNumber int) string {
	return fmt.Sprintf("CLINIC-DOC-%s-PAT-%s-%s-TKN-%d", doctorID, patientID, dateKey, tokenNumber)
}
