package flow

import (
	"fmt"
	"sort"
	"strings"

	"agrilocal/internal/domain"
)

// FormName identifies one of the per-screen form state managers.
type FormName string

const (
	FormSignup     FormName = "signup"
	FormLogin      FormName = "login"
	FormAddProduct FormName = "add-product"
)

// ValidationError reports required fields that are absent or empty. It is
// raised locally, before anything is sent to the auth gateway or the store.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// Form owns a flat mapping from field name to current value for one screen.
// Validation checks only the presence of required fields; accepted
// submissions are forwarded verbatim to the remote collaborator.
type Form struct {
	Name   FormName          `json:"name"`
	Fields map[string]string `json:"fields"`

	required []string
	// requiredWhen adds conditionally required fields keyed by the field
	// whose value triggers them.
	requiredWhen map[string]map[string][]string
}

func newForm(name FormName, required []string) *Form {
	return &Form{
		Name:     name,
		Fields:   map[string]string{},
		required: required,
	}
}

// NewSignupForm builds the registration form. Farm name becomes required
// when the chosen role is farmer.
func NewSignupForm() *Form {
	f := newForm(FormSignup, []string{
		"email", "password", "first_name", "last_name",
		"phone", "location_pin_code", "location_address",
	})
	f.Fields["user_type"] = string(domain.RoleBuyer)
	f.requiredWhen = map[string]map[string][]string{
		"user_type": {string(domain.RoleFarmer): {"farm_name"}},
	}
	return f
}

// NewLoginForm builds the sign-in form.
func NewLoginForm() *Form {
	return newForm(FormLogin, []string{"email", "password"})
}

// NewAddProductForm builds the new-product form. Only name, category and
// price are required; everything else is optional with a default unit.
func NewAddProductForm() *Form {
	f := newForm(FormAddProduct, []string{"name", "category", "price"})
	f.Fields["unit"] = string(domain.UnitKg)
	return f
}

// Set stores a field value, keeping whatever was entered before.
func (f *Form) Set(field, value string) {
	f.Fields[field] = value
}

// Get returns the current value of a field, empty if never set.
func (f *Form) Get(field string) string {
	return f.Fields[field]
}

// Validate checks required-field presence. It returns a *ValidationError
// naming every missing field, or nil when the form may be submitted.
func (f *Form) Validate() error {
	required := append([]string{}, f.required...)
	for trigger, byValue := range f.requiredWhen {
		if extra, ok := byValue[f.Fields[trigger]]; ok {
			required = append(required, extra...)
		}
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(f.Fields[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Reset clears all entered values, restoring the form's defaults.
func (f *Form) Reset() {
	f.Fields = map[string]string{}
	switch f.Name {
	case FormSignup:
		f.Fields["user_type"] = string(domain.RoleBuyer)
	case FormAddProduct:
		f.Fields["unit"] = string(domain.UnitKg)
	}
}

// restore re-attaches the non-serialized required-field configuration after
// a form round-trips through the session store.
func (f *Form) restore() {
	var fresh *Form
	switch f.Name {
	case FormSignup:
		fresh = NewSignupForm()
	case FormLogin:
		fresh = NewLoginForm()
	case FormAddProduct:
		fresh = NewAddProductForm()
	default:
		return
	}
	f.required = fresh.required
	f.requiredWhen = fresh.requiredWhen
	if f.Fields == nil {
		f.Fields = fresh.Fields
	}
}
