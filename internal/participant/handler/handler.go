// Package handler exposes the audit log read API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"markpart/internal/participant/models"
	id "markpart/pkg/domain"
	dErrors "markpart/pkg/domain-errors"
	"markpart/pkg/platform/httputil"
	"markpart/pkg/requestcontext"
)

// Service defines the audit log operations the handler serves.
type Service interface {
	GetActorAuditLog(ctx context.Context, actorID id.ActorID) ([]models.AuditLogEntry, error)
	GetOrganizationAuditLog(ctx context.Context, organizationID id.OrganizationID) ([]models.AuditLogEntry, error)
	GetGridAreaAuditLog(ctx context.Context, gridAreaID id.GridAreaID) ([]models.AuditLogEntry, error)
	GetUserAuditLog(ctx context.Context, userID id.UserID) ([]models.AuditLogEntry, error)
	GetUserRoleAuditLog(ctx context.Context, roleID id.UserRoleID) ([]models.AuditLogEntry, error)
	GetPermissionAuditLog(ctx context.Context, permissionID models.PermissionID) ([]models.AuditLogEntry, error)
	ListPermissionClaims(ctx context.Context) ([]models.AuditLogEntry, error)
}

// Handler wires audit log endpoints to the participant service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit log handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit log endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/actors/{actorID}/audit", h.HandleActorAuditLog)
	r.Get("/organizations/{organizationID}/audit", h.HandleOrganizationAuditLog)
	r.Get("/grid-areas/{gridAreaID}/audit", h.HandleGridAreaAuditLog)
	r.Get("/users/{userID}/audit", h.HandleUserAuditLog)
	r.Get("/user-roles/{userRoleID}/audit", h.HandleUserRoleAuditLog)
	r.Get("/permissions/{permissionID}/audit", h.HandlePermissionAuditLog)
	r.Get("/permissions/audit", h.HandlePermissionClaims)
}

// auditLogResponse wraps entries so the payload can grow without breaking
// consumers.
type auditLogResponse struct {
	AuditLogs []models.AuditLogEntry `json:"auditLogs"`
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, entity string, fetch func(ctx context.Context) ([]models.AuditLogEntry, error)) {
	ctx := r.Context()
	start := time.Now()

	entries, err := fetch(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit log reconstruction failed",
			"request_id", requestcontext.RequestID(ctx),
			"entity", entity,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit log served",
		"request_id", requestcontext.RequestID(ctx),
		"entity", entity,
		"entries", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, auditLogResponse{AuditLogs: entries})
}

// HandleActorAuditLog handles GET /actors/{actorID}/audit requests.
func (h *Handler) HandleActorAuditLog(w http.ResponseWriter, r *http.Request) {
	actorID, err := id.ParseActorID(chi.URLParam(r, "actorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, "actor", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetActorAuditLog(ctx, actorID)
	})
}

// HandleOrganizationAuditLog handles GET /organizations/{organizationID}/audit requests.
func (h *Handler) HandleOrganizationAuditLog(w http.ResponseWriter, r *http.Request) {
	organizationID, err := id.ParseOrganizationID(chi.URLParam(r, "organizationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, "organization", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetOrganizationAuditLog(ctx, organizationID)
	})
}

// HandleGridAreaAuditLog handles GET /grid-areas/{gridAreaID}/audit requests.
func (h *Handler) HandleGridAreaAuditLog(w http.ResponseWriter, r *http.Request) {
	gridAreaID, err := id.ParseGridAreaID(chi.URLParam(r, "gridAreaID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, "grid_area", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetGridAreaAuditLog(ctx, gridAreaID)
	})
}

// HandleUserAuditLog handles GET /users/{userID}/audit requests.
func (h *Handler) HandleUserAuditLog(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, "user", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetUserAuditLog(ctx, userID)
	})
}

// HandleUserRoleAuditLog handles GET /user-roles/{userRoleID}/audit requests.
func (h *Handler) HandleUserRoleAuditLog(w http.ResponseWriter, r *http.Request) {
	userRoleID, err := id.ParseUserRoleID(chi.URLParam(r, "userRoleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.serve(w, r, "user_role", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetUserRoleAuditLog(ctx, userRoleID)
	})
}

// HandlePermissionAuditLog handles GET /permissions/{permissionID}/audit requests.
func (h *Handler) HandlePermissionAuditLog(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "permissionID")
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid permission id"))
		return
	}
	h.serve(w, r, "permission", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.GetPermissionAuditLog(ctx, models.PermissionID(parsed))
	})
}

// HandlePermissionClaims handles GET /permissions/audit requests.
func (h *Handler) HandlePermissionClaims(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "permissions", func(ctx context.Context) ([]models.AuditLogEntry, error) {
		return h.service.ListPermissionClaims(ctx)
	})
}
