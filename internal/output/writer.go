// =============================================================================
// Contact Converter - Output Writer Module
// =============================================================================
//
// This module serializes parsed contacts into the selected output format.
//
// FORMATS:
//   json : The nested types.Contact records as one array.
//          Compact by default; --pretty sorts keys and indents by 4 spaces.
//   csv  : Header row plus one types.FlatContact row per contact, using the
//          selected dialect.
//   xlsx : Same table as csv, written to a "Contacts" worksheet.
//
// The tabular formats flatten contacts first (see the flattener module);
// losses are reported through the logger.
//
// =============================================================================

package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/contact-converter/internal/config"
	"github.com/ginjaninja78/contact-converter/internal/flattener"
	"github.com/ginjaninja78/contact-converter/internal/logging"
	"github.com/ginjaninja78/contact-converter/internal/types"
)

// SheetName is the worksheet holding the xlsx table.
const SheetName = "Contacts"

// =============================================================================
// ERRORS
// =============================================================================

// UnsupportedFormatError reports an output format no renderer exists for.
type UnsupportedFormatError struct {
	Format config.Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("can't generate a %s - not implemented", e.Format)
}

// Check reports whether format can be rendered.
func Check(format config.Format) error {
	switch format {
	case config.FormatJSON, config.FormatCSV, config.FormatXLSX:
		return nil
	}
	return &UnsupportedFormatError{Format: format}
}

// =============================================================================
// RENDERING
// =============================================================================

// Options selects the output format and its settings.
type Options struct {
	Format  config.Format
	Pretty  bool
	Dialect config.Dialect
}

// Render writes contacts to w in the selected format.
func Render(w io.Writer, contacts []types.Contact, opts Options, log logging.Logger) error {
	if log == nil {
		log = logging.Discard
	}

	switch opts.Format {
	case config.FormatJSON:
		log.Info("generating json")
		return WriteJSON(w, contacts, opts.Pretty)

	case config.FormatCSV:
		log.Info("generating csv")
		return WriteCSV(w, flattener.FlattenAll(contacts, log), opts.Dialect)

	case config.FormatXLSX:
		log.Info("generating xlsx")
		return WriteXLSX(w, flattener.FlattenAll(contacts, log))
	}

	return &UnsupportedFormatError{Format: opts.Format}
}

// =============================================================================
// JSON
// =============================================================================

// WriteJSON writes contacts as a JSON array followed by a newline.
func WriteJSON(w io.Writer, contacts []types.Contact, pretty bool) error {
	contacts = normalize(contacts)

	if !pretty {
		return newJSONEncoder(w).Encode(contacts)
	}

	// Round-trip through generic maps so encoding/json emits keys sorted.
	raw, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal contacts: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to re-read contacts: %w", err)
	}

	enc := newJSONEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(generic)
}

func newJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// normalize replaces nil slices so they serialize as [] instead of null.
func normalize(contacts []types.Contact) []types.Contact {
	out := make([]types.Contact, len(contacts))
	for i, c := range contacts {
		if c.Names == nil {
			c.Names = []types.Name{}
		}
		emails := make([]types.EmailAddress, len(c.Emails))
		for j, e := range c.Emails {
			if e.Labels == nil {
				e.Labels = []string{}
			}
			emails[j] = e
		}
		c.Emails = emails
		out[i] = c
	}
	return out
}

// =============================================================================
// CSV
// =============================================================================

// dialectSettings maps a dialect to encoding/csv writer settings. All
// dialects quote minimally.
func dialectSettings(dialect config.Dialect) (comma rune, crlf bool, err error) {
	switch dialect {
	case config.DialectExcel:
		return ',', true, nil
	case config.DialectExcelTab:
		return '\t', true, nil
	case config.DialectUnix, "":
		return ',', false, nil
	}
	return 0, false, fmt.Errorf("unknown csv dialect %q", dialect)
}

// WriteCSV writes the header row and one row per flat contact.
func WriteCSV(w io.Writer, flats []types.FlatContact, dialect config.Dialect) error {
	comma, crlf, err := dialectSettings(dialect)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = comma
	writer.UseCRLF = crlf

	if err := writer.Write(types.FlatHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, flat := range flats {
		if err := writer.Write(flat.Record()); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// =============================================================================
// XLSX
// =============================================================================

// WriteXLSX writes the flat table as an xlsx workbook.
func WriteXLSX(w io.Writer, flats []types.FlatContact) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	if err := writeXLSXRow(f, 1, types.FlatHeader); err != nil {
		return err
	}
	for i, flat := range flats {
		if err := writeXLSXRow(f, i+2, flat.Record()); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func writeXLSXRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
