package flow

import (
	"errors"

	"agrilocal/internal/domain"
)

var (
	ErrAlreadyAuthenticated = errors.New("navigation not allowed while signed in")
	ErrInvalidTransition    = errors.New("invalid view transition")
)

// View identifies the top-level screen the client should render.
type View string

const (
	ViewLoading    View = "loading"
	ViewAnonymous  View = "anonymous"
	ViewAuthForm   View = "auth_form"
	ViewRolePicked View = "role_selected"
	ViewFarmer     View = "farmer_dashboard"
	ViewBuyer      View = "buyer_dashboard"
)

// AuthMode selects which form the auth screen shows.
type AuthMode string

const (
	AuthModeLogin  AuthMode = "login"
	AuthModeSignup AuthMode = "signup"
)

// FarmerTab is the active tab within the farmer dashboard.
type FarmerTab string

const (
	TabProducts   FarmerTab = "products"
	TabAddProduct FarmerTab = "add-product"
	TabProfile    FarmerTab = "profile"
)

// State is the view-router state machine. It starts in ViewLoading until the
// session resolves, then cycles between the anonymous, auth-form,
// role-preview and authenticated views for the lifetime of the session.
// There is no terminal state.
type State struct {
	View          View        `json:"view"`
	Role          domain.Role `json:"role,omitempty"`
	AuthMode      AuthMode    `json:"auth_mode,omitempty"`
	FarmerTab     FarmerTab   `json:"farmer_tab,omitempty"`
	Authenticated bool        `json:"authenticated"`
}

// NewState returns the initial state: the session status is unresolved.
func NewState() State {
	return State{View: ViewLoading}
}

// dashboardFor maps a role to its authenticated dashboard view.
func dashboardFor(role domain.Role) View {
	if role == domain.RoleFarmer {
		return ViewFarmer
	}
	return ViewBuyer
}

// ResolveSession applies the outcome of a session/profile lookup. A resolved
// role moves straight to the matching dashboard and takes precedence over
// whatever view was active. A nil role only settles the initial Loading view
// into Anonymous; it never knocks an active unauthenticated flow back.
func (s *State) ResolveSession(role *domain.Role) {
	if role != nil {
		s.View = dashboardFor(*role)
		s.Role = *role
		s.Authenticated = true
		if *role == domain.RoleFarmer && s.FarmerTab == "" {
			s.FarmerTab = TabProducts
		}
		return
	}
	if s.View == ViewLoading {
		s.View = ViewAnonymous
	}
}

// OpenAuthForm shows the sign-in/sign-up screen. Rejected while signed in:
// an authenticated session can only leave its dashboard through SignOut.
func (s *State) OpenAuthForm(mode AuthMode) error {
	if s.Authenticated {
		return ErrAlreadyAuthenticated
	}
	if s.View == ViewLoading {
		return ErrInvalidTransition
	}
	s.View = ViewAuthForm
	s.AuthMode = mode
	return nil
}

// SelectRole enters the unauthenticated dashboard preview for a role.
func (s *State) SelectRole(role domain.Role) error {
	if s.Authenticated {
		return ErrAlreadyAuthenticated
	}
	if s.View == ViewLoading {
		return ErrInvalidTransition
	}
	if !role.Valid() {
		return ErrInvalidTransition
	}
	s.View = ViewRolePicked
	s.Role = role
	if role == domain.RoleFarmer {
		s.FarmerTab = TabProducts
	}
	return nil
}

// AuthSucceeded applies a successful sign-in from the auth form. The view
// moves to the role preview; the authenticated dashboard follows once the
// session observer delivers the resolved profile via ResolveSession.
func (s *State) AuthSucceeded(role domain.Role) error {
	if s.View != ViewAuthForm {
		return ErrInvalidTransition
	}
	s.View = ViewRolePicked
	s.Role = role
	if role == domain.RoleFarmer {
		s.FarmerTab = TabProducts
	}
	return nil
}

// SignupSucceeded switches the auth form to login mode after registration.
func (s *State) SignupSucceeded() error {
	if s.View != ViewAuthForm {
		return ErrInvalidTransition
	}
	s.AuthMode = AuthModeLogin
	return nil
}

// Back returns to the anonymous landing view from any dashboard or the auth
// form. It reports whether an auth-gateway sign-out should be invoked.
func (s *State) Back() (signOut bool) {
	signOut = s.Authenticated
	s.View = ViewAnonymous
	s.Role = ""
	s.AuthMode = ""
	s.FarmerTab = ""
	s.Authenticated = false
	return signOut
}

// SwitchFarmerTab changes the active farmer dashboard tab.
func (s *State) SwitchFarmerTab(tab FarmerTab) error {
	if s.View != ViewFarmer && !(s.View == ViewRolePicked && s.Role == domain.RoleFarmer) {
		return ErrInvalidTransition
	}
	switch tab {
	case TabProducts, TabAddProduct, TabProfile:
		s.FarmerTab = tab
		return nil
	}
	return ErrInvalidTransition
}
