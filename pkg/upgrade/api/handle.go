package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/fourmiz/fourmiz-idm/pkg/auth"
	"github.com/fourmiz/fourmiz-idm/pkg/errors"
	"github.com/fourmiz/fourmiz-idm/pkg/role"
	"github.com/fourmiz/fourmiz-idm/pkg/upgrade"
)

// Handle handles HTTP requests for role upgrade requests
type Handle struct {
	service *upgrade.Service
}

func NewHandle(service *upgrade.Service) *Handle {
	return &Handle{service: service}
}

// RegisterRoutes registers the role upgrade routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/role/upgrade-requests", func(r chi.Router) {
		r.Post("/", h.CreateRequest)
		r.Get("/", h.ListRequests)
		r.Get("/{id}", h.GetRequest)
		r.Post("/{id}/approve", h.ApproveRequest)
		r.Post("/{id}/reject", h.RejectRequest)
	})
}

// CreateRequestBody is the request body for opening an upgrade request
type CreateRequestBody struct {
	RequestedRole string `json:"requested_role"`
	Reason        string `json:"reason,omitempty"`
}

// CreateRequest opens a pending upgrade request for the caller's account
func (h *Handle) CreateRequest(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountIDFromRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var body CreateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		renderError(w, r, errors.InvalidInput("body", "malformed JSON"))
		return
	}

	req, err := h.service.CreateRequest(r.Context(), upgrade.CreateRequestParams{
		AccountID:     accountID,
		RequestedRole: role.Role(body.RequestedRole),
		Reason:        body.Reason,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, req)
}

// ListRequests lists the caller's upgrade requests, newest first
func (h *Handle) ListRequests(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountIDFromRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	requests, err := h.service.ListRequests(r.Context(), accountID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, requests)
}

// GetRequest returns a single upgrade request owned by the caller
func (h *Handle) GetRequest(w http.ResponseWriter, r *http.Request) {
	accountID, err := auth.AccountIDFromRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, errors.InvalidInput("id", "must be a UUID"))
		return
	}

	req, err := h.service.GetRequest(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if req.AccountID != accountID {
		renderError(w, r, errors.NotFound("upgrade request", id.String()))
		return
	}

	render.JSON(w, r, req)
}

// ApproveRequest approves a pending upgrade request. Meant for the ops
// surface, so it only requires an authenticated caller.
func (h *Handle) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

// RejectRequest rejects a pending upgrade request
func (h *Handle) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handle) decide(w http.ResponseWriter, r *http.Request, decideFn func(ctx context.Context, id uuid.UUID, decidedBy string) (upgrade.Request, error)) {
	accountID, err := auth.AccountIDFromRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, errors.InvalidInput("id", "must be a UUID"))
		return
	}

	req, err := decideFn(r.Context(), id, accountID.String())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, req)
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
