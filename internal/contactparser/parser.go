// =============================================================================
// Contact Converter - .contact Parser Module
// =============================================================================
//
// This module parses Microsoft ".contact" XML documents into types.Contact.
// Only two collections are read:
//
//   <c:contact xmlns:c="http://schemas.microsoft.com/Contact" ...>
//     <c:NameCollection>
//       <c:Name c:ElementID="...">
//         <c:FormattedName>Jane Doe</c:FormattedName>
//         <c:FamilyName>Doe</c:FamilyName>
//         <c:GivenName>Jane</c:GivenName>
//       </c:Name>
//     </c:NameCollection>
//     <c:EmailAddressCollection>
//       <c:EmailAddress c:ElementID="...">
//         <c:Address>jane@example.com</c:Address>
//         <c:LabelCollection>
//           <c:Label>Preferred</c:Label>
//         </c:LabelCollection>
//       </c:EmailAddress>
//     </c:EmailAddressCollection>
//   </c:contact>
//
// Elements are matched by local name, so the namespace prefix does not matter.
// Every element is optional; anything absent yields an empty string. Entries
// carrying xsi:nil="true" are skipped entirely.
//
// =============================================================================

package contactparser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ginjaninja78/contact-converter/internal/logging"
	"github.com/ginjaninja78/contact-converter/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// ParseError reports a document that is not well-formed XML.
type ParseError struct {
	// Source is the input name ("-" for standard input).
	Source string

	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// XML DOCUMENT STRUCTURE
// =============================================================================

// document mirrors the parts of the .contact schema that are extracted.
type document struct {
	XMLName xml.Name
	Names   []nameElement  `xml:"NameCollection>Name"`
	Emails  []emailElement `xml:"EmailAddressCollection>EmailAddress"`
}

type nameElement struct {
	ElementID     string       `xml:"ElementID,attr"`
	Nil           string       `xml:"nil,attr"`
	FormattedName *textElement `xml:"FormattedName"`
	FamilyName    *textElement `xml:"FamilyName"`
	GivenName     *textElement `xml:"GivenName"`
}

type emailElement struct {
	ElementID string        `xml:"ElementID,attr"`
	Nil       string        `xml:"nil,attr"`
	Address   *textElement  `xml:"Address"`
	Labels    []textElement `xml:"LabelCollection>Label"`
}

// textElement captures the character data of a leaf element.
type textElement struct {
	Value string `xml:",chardata"`
}

// text returns the element text, or "" when the element is absent.
func (t *textElement) text() string {
	if t == nil {
		return ""
	}
	return t.Value
}

// isNil reports whether an xsi:nil attribute value marks the element as nil.
func isNil(value string) bool {
	switch strings.TrimSpace(value) {
	case "true", "1":
		return true
	}
	return false
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one .contact document and returns the extracted contact.
//
// PARAMETERS:
//   - r: The raw document.
//   - source: The input name, used in errors and log lines.
//   - log: Receives the per-stage trace.
//
// RETURNS:
//   - The contact, with non-nil Names and Emails slices.
//   - A *ParseError if the document is not well-formed XML.
func Parse(r io.Reader, source string, log logging.Logger) (*types.Contact, error) {
	if log == nil {
		log = logging.Discard
	}

	decoder := xml.NewDecoder(r)

	// .contact files written by older Windows versions may declare a legacy
	// encoding; x/net resolves the label to a decoder.
	decoder.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ParseError{Source: source, Err: err}
	}
	if err := checkTrailing(decoder); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	contact := &types.Contact{
		Names:  extractNames(doc.Names, log),
		Emails: extractEmails(doc.Emails, log),
	}

	log.Trace(fmt.Sprintf("parsed %s", source), contact)

	return contact, nil
}

// checkTrailing consumes the rest of the document. Only whitespace, comments
// and processing instructions may follow the root element.
func checkTrailing(decoder *xml.Decoder) error {
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
			continue
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			return fmt.Errorf("unexpected text %q after root element", bytes.TrimSpace(t))
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		default:
			return fmt.Errorf("unexpected %T after root element", tok)
		}
	}
}

// extractNames converts the NameCollection entries in document order.
func extractNames(elements []nameElement, log logging.Logger) []types.Name {
	log.Debug("├── parsing names")

	names := make([]types.Name, 0, len(elements))
	for _, element := range elements {
		logElementID(element.ElementID, log)
		if isNil(element.Nil) {
			continue
		}
		names = append(names, types.Name{
			FormattedName: element.FormattedName.text(),
			FamilyName:    element.FamilyName.text(),
			GivenName:     element.GivenName.text(),
		})
	}

	return names
}

// extractEmails converts the EmailAddressCollection entries in document order.
// Each entry is appended once, carrying all of its labels.
func extractEmails(elements []emailElement, log logging.Logger) []types.EmailAddress {
	log.Debug("├── parsing email addresses")

	emails := make([]types.EmailAddress, 0, len(elements))
	for _, element := range elements {
		logElementID(element.ElementID, log)
		if isNil(element.Nil) {
			continue
		}

		labels := make([]string, 0, len(element.Labels))
		for i := range element.Labels {
			labels = append(labels, element.Labels[i].text())
		}

		emails = append(emails, types.EmailAddress{
			Address: element.Address.text(),
			Labels:  labels,
		})
	}

	return emails
}

func logElementID(id string, log logging.Logger) {
	if id != "" {
		log.Debug("│   ├── processing id '%s'", id)
	}
}
