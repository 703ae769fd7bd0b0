// =============================================================================
// Contact Converter - Flattener Module
// =============================================================================
//
// This module projects a nested types.Contact onto the fixed-shape
// types.FlatContact used by tabular outputs (CSV, XLSX). The projection is
// lossy:
//   - Name fields are merged independently; the last non-empty value wins.
//   - Email labels are dropped; only "preferred" selects Email-Preferred.
//   - Non-preferred addresses fill Email-1 .. Email-4; the rest are dropped.
//
// Every overwrite or drop is reported as a Loss. Losses are advisory only;
// flattening never fails.
//
// =============================================================================

package flattener

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/contact-converter/internal/logging"
	"github.com/ginjaninja78/contact-converter/internal/types"
)

// preferredLabel marks the preferred email address, compared case-insensitively.
const preferredLabel = "preferred"

// =============================================================================
// LOSS REPORTING
// =============================================================================

// LossKind classifies a data loss.
type LossKind int

const (
	// NameOverwritten means an earlier name value was replaced.
	NameOverwritten LossKind = iota

	// EmailDropped means an address did not fit into Email-1 .. Email-4.
	EmailDropped
)

// Loss describes one value discarded while flattening.
type Loss struct {
	Kind LossKind

	// Field is the flat column affected, e.g. "GivenName" or "Email-5".
	Field string

	// Lost is the discarded value.
	Lost string

	// Kept is the value that replaced Lost; empty for EmailDropped.
	Kept string
}

// String renders the loss the way it is shown to the user.
func (l Loss) String() string {
	switch l.Kind {
	case NameOverwritten:
		return fmt.Sprintf("overwriting '%s' with '%s'. '%s' will get lost", l.Field, l.Kept, l.Lost)
	case EmailDropped:
		return fmt.Sprintf("Too many email addresses. '%s' will get lost", l.Lost)
	}
	return fmt.Sprintf("'%s' will get lost", l.Lost)
}

// =============================================================================
// FLATTENING
// =============================================================================

// Flatten returns the flat projection of contact and every loss incurred.
// It does not modify contact.
func Flatten(contact types.Contact) (types.FlatContact, []Loss) {
	var flat types.FlatContact
	var losses []Loss

	// Names: merge field by field, in the order family, given, formatted.
	for _, name := range contact.Names {
		losses = mergeName(&flat.FamilyName, "FamilyName", name.FamilyName, losses)
		losses = mergeName(&flat.GivenName, "GivenName", name.GivenName, losses)
		losses = mergeName(&flat.FormattedName, "FormattedName", name.FormattedName, losses)
	}

	// Emails: a later preferred address silently replaces an earlier one.
	count := 0
	for _, email := range contact.Emails {
		address := strings.TrimSpace(email.Address)

		if isPreferred(email.Labels) {
			flat.EmailPreferred = address
			continue
		}

		count++
		if count > types.MaxNumberedEmails {
			losses = append(losses, Loss{
				Kind:  EmailDropped,
				Field: fmt.Sprintf("Email-%d", count),
				Lost:  address,
			})
			continue
		}
		flat.Emails[count-1] = address
	}

	return flat, losses
}

// FlattenAll flattens every contact in order and logs each loss as a warning.
func FlattenAll(contacts []types.Contact, log logging.Logger) []types.FlatContact {
	if log == nil {
		log = logging.Discard
	}

	flats := make([]types.FlatContact, 0, len(contacts))
	for _, contact := range contacts {
		log.Debug("├── converting contact")
		flat, losses := Flatten(contact)
		for _, loss := range losses {
			log.Warn("│   ├── %s", loss)
		}
		flats = append(flats, flat)
	}

	return flats
}

// mergeName stores the trimmed candidate in *field when it is non-empty,
// recording a loss if a previous value gets replaced.
func mergeName(field *string, column, candidate string, losses []Loss) []Loss {
	value := strings.TrimSpace(candidate)
	if value == "" {
		return losses
	}
	if *field != "" {
		losses = append(losses, Loss{
			Kind:  NameOverwritten,
			Field: column,
			Lost:  *field,
			Kept:  value,
		})
	}
	*field = value
	return losses
}

func isPreferred(labels []string) bool {
	for _, label := range labels {
		if strings.EqualFold(label, preferredLabel) {
			return true
		}
	}
	return false
}
