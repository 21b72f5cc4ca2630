// Package leads persists contact details captured at the end of a helpful
// conversation, together with what the advisor learned about the prospect
// along the way.
package leads

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Lead is one captured contact.
type Lead struct {
	// SessionID ties the lead back to the conversation it came from.
	SessionID string `json:"session_id"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Facts are details the advisor collected during the conversation
	// (income, target property price, down payment), prefilled from the
	// session so a follow-up call starts informed.
	Facts map[string]any `json:"facts,omitempty"`

	// CapturedAt is when the lead was saved, UTC.
	CapturedAt time.Time `json:"captured_at"`
}

// Validate checks the lead has usable contact details.
func (l *Lead) Validate() error {
	var errs []error
	if l.SessionID == "" {
		errs = append(errs, errors.New("session_id is required"))
	}
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if l.Email == "" {
		errs = append(errs, errors.New("email is required"))
	} else if _, err := mail.ParseAddress(l.Email); err != nil {
		errs = append(errs, fmt.Errorf("email %q is not a valid address", l.Email))
	}
	return errors.Join(errs...)
}

// Store persists leads.
type Store interface {
	// Save appends one lead. Save must have validated input; implementations
	// do not re-validate.
	Save(ctx context.Context, lead *Lead) error
}
