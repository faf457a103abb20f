package transport

import (
	"net/http"

	"agrilocal/internal/domain"
	"agrilocal/internal/flow"
	"agrilocal/internal/geo"
	"agrilocal/internal/middleware"
	"agrilocal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionIDHeader carries the client's flow session identifier. A GET
// without the header mints a new session; every other flow endpoint
// requires it.
const SessionIDHeader = "X-Session-ID"

// FlowEventRequest represents a view-router event submission
type FlowEventRequest struct {
	Event string `json:"event" validate:"required,oneof=open_auth_form select_role auth_succeeded signup_succeeded back switch_tab"`
	Mode  string `json:"mode,omitempty"`
	Role  string `json:"role,omitempty"`
	Tab   string `json:"tab,omitempty"`
}

// FormFieldRequest represents a single form field write
type FormFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// FormValidationResponse reports a form's submit-readiness
type FormValidationResponse struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// LocationResponse reports the outcome of a location detection attempt
type LocationResponse struct {
	Detected  bool     `json:"detected"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// FlowHandler exposes the per-session interaction state: the view router,
// the form managers and the location acquirer.
type FlowHandler struct {
	store       *flow.Store
	authService service.AuthService
	locator     geo.Locator
	logger      *zap.Logger
}

// NewFlowHandler creates a new FlowHandler
func NewFlowHandler(store *flow.Store, authService service.AuthService, locator geo.Locator, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{
		store:       store,
		authService: authService,
		locator:     locator,
		logger:      logger,
	}
}

// RegisterRoutes registers the flow session routes
func (h *FlowHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/flow", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/resolve", h.ResolveSession)
		r.Post("/events", h.ApplyEvent)
		r.Put("/forms/{name}", h.SetFormField)
		r.Post("/forms/{name}/validate", h.ValidateForm)
		r.Post("/forms/{name}/reset", h.ResetForm)
		r.Post("/location", h.DetectLocation)
	})
}

// GetSession returns the current session, minting a fresh one when the
// client has no session header yet.
func (h *FlowHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	session, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load flow session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("Failed to save flow session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	w.Header().Set(SessionIDHeader, session.ID)
	middleware.RespondWithJSON(w, http.StatusOK, session)
}

// ResolveSession settles the Loading view. When the request carries a valid
// bearer token the resolved role wins over whatever view is active;
// otherwise the session settles into the anonymous landing view.
func (h *FlowHandler) ResolveSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var role *domain.Role
	if authHeader := r.Header.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		claims, err := h.authService.ValidateToken(authHeader[7:])
		if err == nil {
			resolved := domain.Role(claims.Role)
			if resolved.Valid() {
				role = &resolved
			}
		} else {
			h.logger.Debug("Session resolution with invalid token", zap.Error(err))
		}
	}

	session.State.ResolveSession(role)
	h.saveAndRespond(w, r, session)
}

// ApplyEvent feeds a navigation event into the view router
func (h *FlowHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req FlowEventRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	switch req.Event {
	case "open_auth_form":
		mode := flow.AuthMode(req.Mode)
		if mode != flow.AuthModeLogin && mode != flow.AuthModeSignup {
			mode = flow.AuthModeLogin
		}
		err = session.State.OpenAuthForm(mode)
	case "select_role":
		err = session.State.SelectRole(domain.Role(req.Role))
	case "auth_succeeded":
		err = session.State.AuthSucceeded(domain.Role(req.Role))
	case "signup_succeeded":
		err = session.State.SignupSucceeded()
	case "back":
		if signOut := session.State.Back(); signOut {
			h.logger.Info("Session navigated back from an authenticated view",
				zap.String("session_id", session.ID))
		}
	case "switch_tab":
		err = session.State.SwitchFarmerTab(flow.FarmerTab(req.Tab))
	}

	if err != nil {
		switch err {
		case flow.ErrAlreadyAuthenticated:
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
		case flow.ErrInvalidTransition:
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to apply event")
		}
		return
	}

	h.saveAndRespond(w, r, session)
}

// SetFormField writes one field of the named form
func (h *FlowHandler) SetFormField(w http.ResponseWriter, r *http.Request) {
	session, form, ok := h.loadForm(w, r)
	if !ok {
		return
	}

	var req FormFieldRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form.Set(req.Field, req.Value)
	h.saveAndRespond(w, r, session)
}

// ValidateForm reports whether the named form is ready to submit. The form
// keeps its values either way; only an explicit reset clears them.
func (h *FlowHandler) ValidateForm(w http.ResponseWriter, r *http.Request) {
	_, form, ok := h.loadForm(w, r)
	if !ok {
		return
	}

	if err := form.Validate(); err != nil {
		if verr, isValidation := err.(*flow.ValidationError); isValidation {
			middleware.RespondWithJSON(w, http.StatusOK, FormValidationResponse{
				Valid:   false,
				Missing: verr.Missing,
			})
			return
		}
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate form")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FormValidationResponse{Valid: true})
}

// ResetForm restores the named form to its defaults
func (h *FlowHandler) ResetForm(w http.ResponseWriter, r *http.Request) {
	session, form, ok := h.loadForm(w, r)
	if !ok {
		return
	}

	form.Reset()
	h.saveAndRespond(w, r, session)
}

// DetectLocation asks the configured locator for coordinates and records
// them on the session. Detection failure is not an error surface for the
// client: the caller falls back to manual address entry.
func (h *FlowHandler) DetectLocation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	coords, err := h.locator.Acquire(r.Context())
	if err != nil {
		h.logger.Debug("Location detection unavailable", zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusOK, LocationResponse{Detected: false})
		return
	}

	session.MarkDetectedLocation(coords.Latitude, coords.Longitude)
	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("Failed to save flow session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LocationResponse{
		Detected:  true,
		Latitude:  session.Latitude,
		Longitude: session.Longitude,
	})
}

func (h *FlowHandler) loadSession(w http.ResponseWriter, r *http.Request) (*flow.Session, bool) {
	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing session header")
		return nil, false
	}

	session, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load flow session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return session, true
}

func (h *FlowHandler) loadForm(w http.ResponseWriter, r *http.Request) (*flow.Session, *flow.Form, bool) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return nil, nil, false
	}

	form := session.Form(flow.FormName(chi.URLParam(r, "name")))
	if form == nil {
		middleware.RespondWithError(w, http.StatusNotFound, "unknown form")
		return nil, nil, false
	}
	return session, form, true
}

func (h *FlowHandler) saveAndRespond(w http.ResponseWriter, r *http.Request, session *flow.Session) {
	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("Failed to save flow session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, session)
}
