package flow

import "strconv"

// Session is the complete client-side interaction state the server tracks
// for one browsing session: the view-router state, the three form managers
// and the caller-owned detected-location flag.
type Session struct {
	ID                    string   `json:"id"`
	State                 State    `json:"state"`
	Signup                *Form    `json:"signup"`
	Login                 *Form    `json:"login"`
	AddProduct            *Form    `json:"add_product"`
	UsingDetectedLocation bool     `json:"using_detected_location"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
}

// NewSession builds a fresh session in the initial Loading view.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		State:      NewState(),
		Signup:     NewSignupForm(),
		Login:      NewLoginForm(),
		AddProduct: NewAddProductForm(),
	}
}

// Form returns the named form manager, nil for an unknown name.
func (s *Session) Form(name FormName) *Form {
	switch name {
	case FormSignup:
		return s.Signup
	case FormLogin:
		return s.Login
	case FormAddProduct:
		return s.AddProduct
	}
	return nil
}

// MarkDetectedLocation records an acquired coordinate pair on the session
// and flips the display flag. The flag is session state, not locator state.
func (s *Session) MarkDetectedLocation(lat, lng float64) {
	s.Latitude = &lat
	s.Longitude = &lng
	s.UsingDetectedLocation = true
	if s.Signup != nil {
		s.Signup.Set("latitude", formatCoord(lat))
		s.Signup.Set("longitude", formatCoord(lng))
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
