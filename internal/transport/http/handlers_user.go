package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"userdir/internal/identity/models"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
	"userdir/pkg/requestcontext"
)

// UserService is the account management surface the handlers need.
type UserService interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	GetByIdentification(ctx context.Context, idNumber int64) (*models.User, error)
	Exists(ctx context.Context, idNumber int64) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	GetBasicByEmails(ctx context.Context, emails []string) ([]*models.User, error)
	Delete(ctx context.Context, idNumber int64) error
	IdTypes(ctx context.Context) ([]*models.IdType, error)
	Roles(ctx context.Context) ([]*models.Role, error)
}

// UserHandler wires account endpoints to the directory service.
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler constructs the account handler.
func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// HandleCreate handles POST /api/v1/users.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := req.ToModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(ctx, u)
	if err != nil {
		h.logger.WarnContext(ctx, "user creation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user created",
		"request_id", requestcontext.RequestID(ctx),
		"identification_number", created.IdentificationNumber,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}

// HandleUpdate handles PUT /api/v1/users.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[EditUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := req.ToModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.Update(ctx, u)
	if err != nil {
		h.logger.WarnContext(ctx, "user update rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// HandleList handles GET /api/v1/users.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponses(users))
}

// HandleGetByIdentification handles GET /api/v1/users/{idNumber}.
func (h *UserHandler) HandleGetByIdentification(w http.ResponseWriter, r *http.Request) {
	idNumber, err := pathIdentification(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	u, err := h.service.GetByIdentification(r.Context(), idNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBasicResponse(u))
}

// HandleExists handles GET /api/v1/users/exists/{idNumber}.
func (h *UserHandler) HandleExists(w http.ResponseWriter, r *http.Request) {
	idNumber, err := pathIdentification(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	exists, err := h.service.Exists(r.Context(), idNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

// HandleBasicByEmails handles POST /api/v1/users/basic: batch resolution
// of emails into basic account views.
func (h *UserHandler) HandleBasicByEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	emails, ok := httputil.Decode[[]string](w, r, h.logger)
	if !ok {
		return
	}

	users, err := h.service.GetBasicByEmails(ctx, emails)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBasicResponses(users))
}

// HandleDelete handles DELETE /api/v1/users/{idNumber}.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idNumber, err := pathIdentification(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, idNumber); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user deleted",
		"request_id", requestcontext.RequestID(ctx),
		"identification_number", idNumber,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListIdTypes handles GET /api/v1/idtypes.
func (h *UserHandler) HandleListIdTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.IdTypes(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, types)
}

// HandleListRoles handles GET /api/v1/roles.
func (h *UserHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roles)
}

func pathIdentification(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "idNumber")
	idNumber, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "idNumber must be numeric")
	}
	return idNumber, nil
}
