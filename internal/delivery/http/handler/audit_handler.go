package handler

import (
	"net/http"

	"clinic-queue/internal/usecase"
	"clinic-queue/pkg/response"
)

type AuditHandler struct {
	auditUsecase usecase.AuditUsecase
}

func NewAuditHandler(auditUsecase usecase.AuditUsecase) *AuditHandler {
	return &AuditHandler{auditUsecase: auditUsecase}
}

// List returns the audit trail
// @Summary List audit log entries
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.auditUsecase.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
