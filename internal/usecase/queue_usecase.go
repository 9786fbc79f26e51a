package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-queue/internal/delivery/dto"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/domain/repository"
	"clinic-queue/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrDoctorNotFound = errors.New("doctor not found")

type QueueUsecase interface {
	// Advance moves the doctor's current-serving cursor forward by one,
	// clamped at the day's issued token count. Advancing an unknown doctor
	// is an error, not a silent no-op; the choice is applied consistently
	// across the queue surface.
	Advance(ctx context.Context, doctorID uuid.UUID) (*dto.QueueSnapshotResponse, error)
	Snapshot(ctx context.Context, doctorID uuid.UUID) (*dto.QueueSnapshotResponse, error)
	// ResetAllQueues and ResetDailyPoints run on the same daily schedule but
	// stay independently invokable; neither calls the other.
	ResetAllQueues(ctx context.Context) error
	ResetDailyPoints(ctx context.Context) error
}

type queueUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	doctorRepo  repository.DoctorProfileRepository
	apptRepo    repository.AppointmentRepository
	userRepo    repository.UserRepository
	queueEvents *service.QueueEventService
	audit       service.AuditService
	now         func() time.Time
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	apptRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	queueEvents *service.QueueEventService,
	audit service.AuditService,
) QueueUsecase {
	return &queueUsecase{
		db:          db,
		log:         log,
		doctorRepo:  doctorRepo,
		apptRepo:    apptRepo,
		userRepo:    userRepo,
		queueEvents: queueEvents,
		audit:       audit,
		now:         time.Now,
	}
}

func (u *queueUsecase) Advance(ctx context.Context, doctorID uuid.UUID) (*dto.QueueSnapshotResponse, error) {
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	dateKey := entity.DateKey(u.now())

	// Atomic guarded update; concurrent call-next presses serialize in the
	// database, and the cursor can never pass the issued count.
	current, moved, err := u.doctorRepo.AdvanceServing(u.db.WithContext(ctx), doctorID, dateKey)
	if err != nil {
		u.log.Warnf("Failed to advance queue for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	if moved {
		var actor *uuid.UUID
		if id, ok := middleware.GetUserIDFromContext(ctx); ok {
			actor = &id
		}
		if err := u.audit.LogUpdate(ctx, u.db.WithContext(ctx), actor, entity.AuditActionQueueAdvance, "doctor_queue", doctorID.String(),
			map[string]interface{}{"current_serving": current - 1},
			map[string]interface{}{"current_serving": current},
		); err != nil {
			u.log.Warnf("Audit write failed for queue advance %s (non-fatal): %+v", doctorID, err)
		}

		u.queueEvents.PublishUpdated(ctx, u.db, doctorID, dateKey)
		u.log.Infof("Queue advanced: doctor=%s, date=%s, serving=%d", doctorID, dateKey, current)
	} else {
		u.log.Debugf("Queue advance no-op for doctor %s: nothing left to call", doctorID)
	}

	// Snapshot from the store either way; on a clamped no-op the caller sees
	// the unchanged cursor.
	return u.snapshotFor(ctx, doctorID, dateKey)
}

func (u *queueUsecase) Snapshot(ctx context.Context, doctorID uuid.UUID) (*dto.QueueSnapshotResponse, error) {
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return u.snapshotFor(ctx, doctorID, entity.DateKey(u.now()))
}

func (u *queueUsecase) snapshotFor(ctx context.Context, doctorID uuid.UUID, dateKey string) (*dto.QueueSnapshotResponse, error) {
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	total, err := u.apptRepo.CountByDoctorAndDate(u.db.WithContext(ctx), doctorID, dateKey)
	if err != nil {
		return nil, err
	}

	current := doctor.ServingFor(dateKey)
	return &dto.QueueSnapshotResponse{
		DoctorID:       doctorID,
		Date:           dateKey,
		CurrentServing: current,
		TotalIssued:    int(total),
		Remaining:      remainingTokens(int(total), current),
	}, nil
}

// ResetAllQueues zeroes every doctor's cursor. Invoked by the scheduler at
// the daily boundary.
func (u *queueUsecase) ResetAllQueues(ctx context.Context) error {
	rows, err := u.doctorRepo.ResetAllServing(u.db.WithContext(ctx))
	if err != nil {
		u.log.Errorf("Failed to reset queue cursors: %+v", err)
		return err
	}

	if err := u.audit.LogUpdate(ctx, u.db.WithContext(ctx), nil, entity.AuditActionQueueReset, "doctor_queue", "all",
		nil, map[string]interface{}{"reset_doctors": rows},
	); err != nil {
		u.log.Warnf("Audit write failed for queue reset (non-fatal): %+v", err)
	}

	u.log.Infof("Daily queue reset complete: %d doctors", rows)
	return nil
}

// ResetDailyPoints zeroes the reward points counters. Shares the schedule
// with ResetAllQueues but nothing else.
func (u *queueUsecase) ResetDailyPoints(ctx context.Context) error {
	dateKey := entity.DateKey(u.now())
	rows, err := u.userRepo.ResetDailyPoints(u.db.WithContext(ctx), dateKey)
	if err != nil {
		u.log.Errorf("Failed to reset daily points: %+v", err)
		return err
	}

	u.log.Infof("Daily points reset complete: %d users", rows)
	return nil
}

func remainingTokens(total, current int) int {
	if remaining := total - current; remaining > 0 {
		return remaining
	}
	return 0
}
