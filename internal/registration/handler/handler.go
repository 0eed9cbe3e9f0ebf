package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaxreg/internal/registration/models"
	dErrors "vaxreg/pkg/domain-errors"
	"vaxreg/pkg/platform/httputil"
	"vaxreg/pkg/requestcontext"
)

// Service defines the registration operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Registration, error)
	Get(ctx context.Context, citizenID string) (*models.Registration, error)
	Remove(ctx context.Context, citizenID string) error
	List(ctx context.Context) ([]*models.Registration, error)
}

// Handler serves the registration endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register mounts the public registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registration", h.handleRegister)
	r.Get("/registration/{citizen_id}", h.handleGet)
	r.Delete("/registration/{citizen_id}", h.handleRemove)
}

// RegisterAdmin mounts operator routes. The caller applies the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/registrations", h.handleList)
}

// handleRegister accepts parameters from the query string, a form body, or a flat JSON body.
// Rejections are answered with 200 and a feedback message; structural failures with an HTML page.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	params, err := httputil.RequestParams(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read registration parameters",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteHTMLError(w, err)
		return
	}

	_, err = h.service.Register(ctx, models.RegisterRequestFromParams(params))
	if err != nil {
		code := dErrors.CodeOf(err)
		if code.IsRejection() {
			httputil.WriteJSON(w, http.StatusOK, models.FeedbackResponse{Feedback: feedbackFor(code)})
			return
		}
		if code == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to register",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteHTMLError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.FeedbackResponse{Feedback: models.FeedbackSuccess})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reg, err := h.service.Get(ctx, chi.URLParam(r, "citizen_id"))
	if err != nil {
		h.logFailure(ctx, "failed to get registration", err)
		httputil.WriteHTMLError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Remove(ctx, chi.URLParam(r, "citizen_id")); err != nil {
		h.logFailure(ctx, "failed to remove registration", err)
		httputil.WriteHTMLError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.FeedbackResponse{Feedback: models.FeedbackRemoved})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regs, err := h.service.List(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to list registrations", err)
		httputil.WriteError(w, err)
		return
	}
	if regs == nil {
		regs = []*models.Registration{}
	}

	httputil.WriteJSON(w, http.StatusOK, models.ListResponse{Registrations: regs, Count: len(regs)})
}

// logFailure logs internal errors only; not-found is an expected outcome.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

// NotFound answers unknown routes with an HTML page.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteHTML(w, http.StatusNotFound, "The requested resource does not exist.")
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteHTML(w, http.StatusMethodNotAllowed, "The method is not allowed for the requested resource.")
}

func feedbackFor(code dErrors.Code) string {
	switch code {
	case dErrors.CodeInvalidCitizenID:
		return models.FeedbackInvalidCitizenID
	case dErrors.CodeInvalidBirthDate:
		return models.FeedbackInvalidBirthDate
	case dErrors.CodeMinimumAgeNotReached:
		return models.FeedbackMinimumAge
	case dErrors.CodeAlreadyRegistered:
		return models.FeedbackAlreadyRegistered
	default:
		return ""
	}
}
