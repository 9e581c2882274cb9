package domain

import (
	"fmt"
	"strings"
)

// OptionRef types accepted in vote submissions
const (
	OptionRefExisting = "existing"
	OptionRefNew      = "new"
)

// Option is a nameable choice within a category, as stored in the
// record store.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OptionRef is a voter's reference to an option: either an existing
// row by id, or a newly proposed name.
type OptionRef struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Validate checks the reference shape for the given category. Error
// messages are user-facing and scoped to the category, matching the
// voting form's language.
func (r *OptionRef) Validate(category Category) error {
	switch r.Type {
	case OptionRefExisting:
		if r.ID == "" {
			return fmt.Errorf("%s: id manquant", category)
		}
		return nil
	case OptionRefNew:
		if len(strings.TrimSpace(r.Name)) < 2 {
			return fmt.Errorf("%s: nom trop court", category)
		}
		return nil
	default:
		return fmt.Errorf("%s: type invalide", category)
	}
}

// TrimmedName returns the proposed name with surrounding whitespace
// removed. Only meaningful for "new" references.
func (r *OptionRef) TrimmedName() string {
	return strings.TrimSpace(r.Name)
}
