package usecase

import (
	"context"
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

type DoctorUsecase interface {
	ListApproved(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateStatus(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorStatusRequest) error
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	apptRepo   repository.AppointmentRepository
	audit      service.AuditService
	now        func() time.Time
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	apptRepo repository.AppointmentRepository,
	audit service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
		apptRepo:   apptRepo,
		audit:      audit,
		now:        time.Now,
	}
}

// ListApproved returns the public doctor directory with each doctor's queue
// position for today.
func (u *doctorUsecase) ListApproved(ctx context.Context) (*dto.DoctorListResponse, error) {
	db := u.db.WithContext(ctx)

	profiles, err := u.doctorRepo.FindApproved(db)
	if err != nil {
		u.log.Warnf("Failed to list approved doctors: %+v", err)
		return nil, err
	}

	dateKey := entity.DateKey(u.now())
	maxima, err := u.apptRepo.TokenMaxima(db, dateKey)
	if err != nil {
		u.log.Warnf("Failed to load token maxima: %+v", err)
		return nil, err
	}
	issued := make(map[uuid.UUID]int, len(maxima))
	for _, m := range maxima {
		issued[m.DoctorID] = m.MaxToken
	}

	doctors := make([]dto.DoctorResponse, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		doctors = append(doctors, *converter.DoctorToResponse(p, issued[p.UserID], p.ServingFor(dateKey)))
	}

	return &dto.DoctorListResponse{Doctors: doctors, Total: len(doctors)}, nil
}

// UpdateStatus approves or rejects a pending doctor registration.
func (u *doctorUsecase) UpdateStatus(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorStatusRequest) error {
	db := u.db.WithContext(ctx)

	profile, err := u.doctorRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return err
	}
	if profile == nil {
		return ErrDoctorNotFound
	}

	oldStatus := profile.Status
	newStatus := entity.ApprovalStatus(req.Status)

	rows, err := u.doctorRepo.UpdateStatus(db, doctorID, newStatus)
	if err != nil {
		u.log.Warnf("Failed to update doctor status: %+v", err)
		return err
	}
	if rows == 0 {
		return ErrDoctorNotFound
	}

	var actor *uuid.UUID
	if id, ok := middleware.GetUserIDFromContext(ctx); ok {
		actor = &id
	}
	if err := u.audit.LogUpdate(ctx, db, actor, "doctor.status_update", "doctor_profile", doctorID.String(),
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": newStatus},
	); err != nil {
		u.log.Warnf("Failed to write audit log: %+v", err)
	}

	return nil
}
