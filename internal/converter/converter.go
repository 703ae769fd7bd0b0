// =============================================================================
// Contact Converter - Converter Module
// =============================================================================
//
// This module orchestrates one conversion run, from reading the inputs to
// writing the single aggregate output document.
//
// CONVERSION PIPELINE:
//   1. Check that the output format can be rendered
//   2. Read every input ("-" is standard input)
//   3. Parse each input into a types.Contact, in argument order
//   4. Render all contacts into one document in memory
//   5. Write the document to the output ("-" is standard output)
//
// Any failure aborts the run before step 5, so nothing is written.
//
// =============================================================================

package converter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ginjaninja78/contact-converter/internal/config"
	"github.com/ginjaninja78/contact-converter/internal/contactparser"
	"github.com/ginjaninja78/contact-converter/internal/logging"
	"github.com/ginjaninja78/contact-converter/internal/output"
	"github.com/ginjaninja78/contact-converter/internal/types"
	"github.com/ginjaninja78/contact-converter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a successful run.
type Result struct {
	// OutputPath is where the document was written ("-" for standard output).
	OutputPath string

	// Format is the format that was written.
	Format config.Format

	// Contacts are the parsed records, one per input.
	Contacts []types.Contact

	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	FilesRead    int
	NamesParsed  int
	EmailsParsed int
	BytesWritten int

	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one validated set of options.
type Converter struct {
	opts   *config.Options
	files  *utils.FileManager
	logger logging.Logger
}

// New creates a Converter. A nil files uses the process streams and a nil
// logger discards all messages.
func New(opts *config.Options, files *utils.FileManager, logger logging.Logger) *Converter {
	if files == nil {
		files = utils.NewFileManager()
	}
	if logger == nil {
		logger = logging.Discard
	}
	return &Converter{opts: opts, files: files, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
//
// RETURNS:
//   - The Result on success.
//   - *config.UsageError when an input cannot be read,
//     *contactparser.ParseError when an input is malformed,
//     *output.UnsupportedFormatError for an unknown format,
//     or a wrapped I/O error when writing fails.
func (c *Converter) Run() (*Result, error) {
	startTime := time.Now()
	result := &Result{
		OutputPath: c.opts.OutputPath,
		Format:     c.opts.Format,
	}

	// =========================================================================
	// STEP 1: CHECK FORMAT
	// =========================================================================

	c.logger.Debug("setting output format to %s (%s)", c.opts.Format, c.opts.FormatReason)
	if err := output.Check(c.opts.Format); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: READ INPUTS
	// =========================================================================
	// Everything is read before parsing starts, so an unreadable path is
	// reported as a usage error before any parse error.

	inputs := make([][]byte, len(c.opts.Files))
	for i, path := range c.opts.Files {
		data, err := c.files.ReadInput(path)
		if err != nil {
			return nil, &config.UsageError{Msg: "invalid input file", Err: err}
		}
		inputs[i] = data
	}
	result.Stats.FilesRead = len(inputs)

	// =========================================================================
	// STEP 3: PARSE CONTACTS
	// =========================================================================

	result.Contacts = make([]types.Contact, 0, len(inputs))
	for i, data := range inputs {
		path := c.opts.Files[i]
		c.logger.Info("opening '%s'", displayName(path, "<stdin>"))

		contact, err := contactparser.Parse(bytes.NewReader(data), displayName(path, "<stdin>"), c.logger)
		if err != nil {
			return nil, err
		}

		result.Contacts = append(result.Contacts, *contact)
		result.Stats.NamesParsed += len(contact.Names)
		result.Stats.EmailsParsed += len(contact.Emails)
	}

	// =========================================================================
	// STEP 4: RENDER
	// =========================================================================

	var doc bytes.Buffer
	renderOpts := output.Options{
		Format:  c.opts.Format,
		Pretty:  c.opts.Pretty,
		Dialect: c.opts.Dialect,
	}
	if err := output.Render(&doc, result.Contacts, renderOpts, c.logger); err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", c.opts.Format, err)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	if err := c.files.WriteOutput(c.opts.OutputPath, doc.Bytes()); err != nil {
		return nil, err
	}

	result.Stats.BytesWritten = doc.Len()
	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Debug("wrote %d bytes to '%s' in %s",
		result.Stats.BytesWritten, displayName(c.opts.OutputPath, "<stdout>"), result.Stats.ProcessingTime)

	return result, nil
}

// displayName names a path in messages, using stream for "-".
func displayName(path, stream string) string {
	if path == utils.StdStream {
		return stream
	}
	return path
}
