package handler

import (
	"net/http"

	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/usecase"
	"clinic-queue/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase) *QueueHandler {
	return &QueueHandler{queueUsecase: queueUsecase}
}

// Advance moves the doctor's queue cursor to the next token
// @Summary Advance the live queue
// @Tags Queue
// @Security BearerAuth
// @Produce json
// @Param doctorId path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /queue/{doctorId}/advance [post]
func (h *QueueHandler) Advance(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	// Doctors can only advance their own queue; admins can advance any.
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	if role == entity.RoleDoctor {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok || userID != doctorID {
			response.Forbidden(w, "You can only advance your own queue")
			return
		}
	}

	snapshot, err := h.queueUsecase.Advance(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to advance queue")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue advanced", snapshot)
}

// Snapshot returns the current state of the doctor's queue
// @Summary Get the live queue state
// @Tags Queue
// @Produce json
// @Param doctorId path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /queue/{doctorId} [get]
func (h *QueueHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	snapshot, err := h.queueUsecase.Snapshot(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get queue state")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue state retrieved", snapshot)
}
