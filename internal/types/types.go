// =============================================================================
// Contact Converter - Shared Types
// =============================================================================
//
// This package contains the record types shared across modules to avoid
// import cycles. Types defined here are used by:
//   - contactparser (produces Contact)
//   - flattener     (turns Contact into FlatContact)
//   - output        (serializes both forms)
//
// =============================================================================

package types

// =============================================================================
// NESTED CONTACT
// =============================================================================

// Contact is the nested record extracted from one .contact document.
// Both slices keep source document order and are never nil once produced
// by the parser, so they serialize as [] rather than null.
type Contact struct {
	// Names holds every non-nil entry of the NameCollection.
	Names []Name `json:"Name"`

	// Emails holds every non-nil entry of the EmailAddressCollection.
	Emails []EmailAddress `json:"Email"`
}

// Name is one alternate name representation of a contact.
// Absent sub-elements are empty strings.
type Name struct {
	FormattedName string `json:"FormattedName"`
	FamilyName    string `json:"FamilyName"`
	GivenName     string `json:"GivenName"`
}

// EmailAddress is one entry of the EmailAddressCollection.
type EmailAddress struct {
	// Address is the raw text of the Address element.
	Address string `json:"Address"`

	// Labels are the texts of the LabelCollection, in document order.
	Labels []string `json:"Labels"`
}

// =============================================================================
// FLAT CONTACT
// =============================================================================

// MaxNumberedEmails is the number of Email-N columns in the flat table.
const MaxNumberedEmails = 4

// FlatHeader lists the flat table columns in output order.
var FlatHeader = []string{
	"FormattedName",
	"GivenName",
	"FamilyName",
	"Email-Preferred",
	"Email-1",
	"Email-2",
	"Email-3",
	"Email-4",
}

// FlatContact is the lossy tabular projection of a Contact.
type FlatContact struct {
	FormattedName  string
	GivenName      string
	FamilyName     string
	EmailPreferred string

	// Emails are the Email-1 .. Email-4 columns.
	Emails [MaxNumberedEmails]string
}

// Record returns the field values in FlatHeader order.
func (f FlatContact) Record() []string {
	record := make([]string, 0, len(FlatHeader))
	record = append(record, f.FormattedName, f.GivenName, f.FamilyName, f.EmailPreferred)
	record = append(record, f.Emails[:]...)
	return record
}
