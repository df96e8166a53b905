package api

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/fourmiz/fourmiz-idm/pkg/auth"
	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/profile"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
	"github.com/fourmiz/fourmiz-idm/pkg/session"
)

// Handle handles HTTP requests for the role session surface
type Handle struct {
	manager        *session.Manager
	profileService *profile.ProfileService
}

// NewHandle creates a new role session handler
func NewHandle(manager *session.Manager, profileService *profile.ProfileService) *Handle {
	return &Handle{
		manager:        manager,
		profileService: profileService,
	}
}

// RegisterRoutes registers the role session routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/role", func(r chi.Router) {
		r.Get("/", h.GetRole)
		r.Post("/resolve", h.ResolveRole)
		r.Post("/switch", h.SwitchRole)
		r.Get("/completion", h.GetCompletion)
		r.Post("/detach", h.Detach)
	})
}

// RoleResponse is the role session view returned to clients
type RoleResponse struct {
	AccountID      string      `json:"account_id"`
	State          string      `json:"state"`
	ActiveRole     string      `json:"active_role,omitempty"`
	AvailableRoles []string    `json:"available_roles"`
	IsInitialized  bool        `json:"is_initialized"`
	SwitchResult   interface{} `json:"switch_result,omitempty"`
}

// GetRole returns the current role snapshot, resolving the session from the
// stored profile on first access
func (h *Handle) GetRole(w http.ResponseWriter, r *http.Request) {
	sess, err := h.attachedSession(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	snapshot := sess.Snapshot()
	if !snapshot.IsInitialized {
		snapshot, err = h.resolveFromStore(r, sess)
		if err != nil {
			renderError(w, r, err)
			return
		}
	}

	render.JSON(w, r, toRoleResponse(snapshot))
}

// ResolveRole resolves the session from a raw profile record pushed by the
// client, storing the normalized profile along the way
func (h *Handle) ResolveRole(w http.ResponseWriter, r *http.Request) {
	sess, err := h.attachedSession(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var raw profile.RawProfile
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		renderError(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	p, _, err := h.profileService.IngestRaw(r.Context(), raw)
	if err != nil {
		renderError(w, r, err)
		return
	}

	snapshot, err := sess.ResolveProfile(r.Context(), p)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, toRoleResponse(snapshot))
}

// SwitchRoleRequest is the request body for a role switch
type SwitchRoleRequest struct {
	Role string `json:"role"`
}

// SwitchRole switches the session to the requested role
func (h *Handle) SwitchRole(w http.ResponseWriter, r *http.Request) {
	sess, err := h.attachedSession(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req SwitchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		renderError(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	if !sess.Snapshot().IsInitialized {
		if _, err := h.resolveFromStore(r, sess); err != nil {
			renderError(w, r, err)
			return
		}
	}

	result, err := sess.SwitchRole(r.Context(), role.Role(req.Role))
	if err != nil {
		renderError(w, r, err)
		return
	}

	response := toRoleResponse(sess.Snapshot())
	response.SwitchResult = result
	render.JSON(w, r, response)
}

// GetCompletion reports profile completeness for a target role
func (h *Handle) GetCompletion(w http.ResponseWriter, r *http.Request) {
	sess, err := h.attachedSession(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if !sess.Snapshot().IsInitialized {
		if _, err := h.resolveFromStore(r, sess); err != nil {
			renderError(w, r, err)
			return
		}
	}

	target := role.Role(r.URL.Query().Get("target"))
	if target == "" {
		target = role.RoleFourmiz
	}

	status, err := sess.CheckCompletion(target)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, status)
}

// Detach discards the live session on sign-out
func (h *Handle) Detach(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.AccountIDFromRequest(r); err != nil {
		renderError(w, r, err)
		return
	}

	h.manager.Detach()
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// attachedSession binds the request's account to its role session
func (h *Handle) attachedSession(r *http.Request) (*session.Session, error) {
	accountID, err := auth.AccountIDFromRequest(r)
	if err != nil {
		return nil, err
	}
	return h.manager.Attach(r.Context(), accountID)
}

// resolveFromStore resolves a session from the profile repository
func (h *Handle) resolveFromStore(r *http.Request, sess *session.Session) (session.Snapshot, error) {
	p, err := h.profileService.GetProfile(r.Context(), sess.AccountID())
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.ResolveProfile(r.Context(), p)
}

func toRoleResponse(snapshot session.Snapshot) RoleResponse {
	response := RoleResponse{
		AccountID:      snapshot.AccountID.String(),
		AvailableRoles: []string{},
	}
	// copier converts the role slice element-wise; only the fields it cannot
	// assign are mapped by hand
	copier.Copy(&response, &snapshot)
	response.State = string(snapshot.State)
	response.ActiveRole = string(snapshot.ActiveRole)
	return response
}

// renderError maps a domain error to an HTTP response
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		render.Status(r, errors.MapErrorCodeToHTTPStatus(domainErr.Code))
		render.JSON(w, r, map[string]interface{}{
			"code":    domainErr.Code,
			"message": domainErr.Message,
			"details": domainErr.Details,
		})
		return
	}

	slog.Error("Unhandled error", "err", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{"message": http.StatusText(http.StatusInternalServerError)})
}
