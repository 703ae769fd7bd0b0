// =============================================================================
// Contact Converter - Configuration Module
// =============================================================================
//
// This module turns the command-line flags, plus an optional YAML defaults
// file, into one validated Options value before any input is read.
//
// PRECEDENCE (highest first):
//   1. Explicit flags (--json, --csv, --xlsx, --pretty, --csv-dialect, -v)
//   2. Output file extension (.json, .csv, .xlsx)
//   3. Format implied by --pretty (json) or --csv-dialect (csv)
//   4. The YAML defaults file (--config)
//   5. Built-in defaults (json, unix dialect, compact, verbosity 0)
//
// CONFIG FILE EXAMPLE:
//   verbose: 1
//   output:
//     format: csv
//     pretty: false
//     csv_dialect: excel
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Format is an output document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Dialect is a named bundle of CSV delimiter and line-ending conventions.
type Dialect string

const (
	DialectExcel    Dialect = "excel"
	DialectExcelTab Dialect = "excel-tab"
	DialectUnix     Dialect = "unix"
)

// Dialects lists the accepted --csv-dialect values.
var Dialects = []Dialect{DialectExcel, DialectExcelTab, DialectUnix}

// StdStream is the path meaning standard input or standard output.
const StdStream = "-"

// =============================================================================
// ERRORS
// =============================================================================

// UsageError reports an invalid or conflicting invocation.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// =============================================================================
// CONFIG FILE
// =============================================================================

// File is the optional YAML defaults file.
type File struct {
	// Verbose is the default verbosity level.
	Verbose int `yaml:"verbose"`

	Output OutputDefaults `yaml:"output"`
}

// OutputDefaults holds output settings used when no flag decides them.
type OutputDefaults struct {
	// Format replaces json as the fallback format.
	Format string `yaml:"format"`

	// Pretty enables indented JSON.
	Pretty bool `yaml:"pretty"`

	// CSVDialect replaces unix as the default dialect.
	CSVDialect string `yaml:"csv_dialect"`
}

// LoadFile reads the YAML defaults file at path. An empty path yields an
// empty File. Unreadable files and unknown keys are usage errors.
func LoadFile(path string) (*File, error) {
	var file File
	if path == "" {
		return &file, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("failed to read config file %s", path), Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		// Empty or comment-only files decode to EOF.
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, &UsageError{Msg: fmt.Sprintf("failed to parse config file %s", path), Err: err}
	}

	return &file, nil
}

// =============================================================================
// FLAGS AND OPTIONS
// =============================================================================

// Flags carries the raw command-line values. The *Set fields record whether
// a flag was given explicitly.
type Flags struct {
	Files      []string
	Verbosity  int
	Output     string
	JSON       bool
	CSV        bool
	XLSX       bool
	Pretty     bool
	Dialect    string
	DialectSet bool
}

// Options is the validated configuration of one run.
type Options struct {
	// Files are the input paths; "-" is standard input.
	Files []string

	Verbosity int

	// OutputPath is the destination; "-" is standard output.
	OutputPath string

	Format Format

	// FormatReason explains how Format was chosen, for the debug trace.
	FormatReason string

	// Pretty requests sorted-key, indented JSON.
	Pretty bool

	Dialect Dialect
}

// Resolve validates flags against the mutual-exclusion rules and fills in
// everything the flags leave open. file may be nil.
func Resolve(flags Flags, file *File) (*Options, error) {
	if file == nil {
		file = &File{}
	}

	if len(flags.Files) == 0 {
		return nil, usageErrorf("at least one input file is required")
	}

	opts := &Options{
		Files:      flags.Files,
		Verbosity:  flags.Verbosity,
		OutputPath: flags.Output,
		Pretty:     flags.Pretty || file.Output.Pretty,
	}
	if opts.OutputPath == "" {
		opts.OutputPath = StdStream
	}
	if opts.Verbosity == 0 {
		opts.Verbosity = file.Verbose
	}

	// =========================================================================
	// EXPLICIT FORMAT AND CONFLICTS
	// =========================================================================

	explicit, err := explicitFormat(flags)
	if err != nil {
		return nil, err
	}

	if flags.Pretty && explicit != "" && explicit != FormatJSON {
		return nil, usageErrorf("'--pretty' is only for json output")
	}
	if flags.DialectSet && explicit != "" && explicit != FormatCSV {
		return nil, usageErrorf("'--csv-dialect' is only for csv output")
	}

	// =========================================================================
	// DIALECT
	// =========================================================================

	dialect := string(DialectUnix)
	if file.Output.CSVDialect != "" {
		dialect = file.Output.CSVDialect
	}
	if flags.DialectSet {
		dialect = flags.Dialect
	}
	if opts.Dialect, err = ParseDialect(dialect); err != nil {
		return nil, err
	}

	// =========================================================================
	// FORMAT DETECTION
	// =========================================================================

	switch {
	case explicit != "":
		opts.Format, opts.FormatReason = explicit, "from flag"
	case formatFromExtension(opts.OutputPath) != "":
		opts.Format, opts.FormatReason = formatFromExtension(opts.OutputPath), "from fileextension"
	case flags.Pretty:
		opts.Format, opts.FormatReason = FormatJSON, "from --pretty"
	case flags.DialectSet:
		opts.Format, opts.FormatReason = FormatCSV, "from --csv-dialect"
	case file.Output.Format != "":
		opts.Format, opts.FormatReason = Format(strings.ToLower(strings.TrimSpace(file.Output.Format))), "from config file"
	default:
		opts.Format, opts.FormatReason = FormatJSON, "default"
	}

	return opts, nil
}

// ParseDialect validates a dialect name. Matching ignores case, like the
// format name in the config file.
func ParseDialect(name string) (Dialect, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, d := range Dialects {
		if string(d) == normalized {
			return d, nil
		}
	}
	return "", usageErrorf("invalid csv dialect %q (choose from excel, excel-tab, unix)", name)
}

// explicitFormat returns the format selected by --json/--csv/--xlsx, or ""
// when none was given.
func explicitFormat(flags Flags) (Format, error) {
	var selected []Format
	if flags.JSON {
		selected = append(selected, FormatJSON)
	}
	if flags.CSV {
		selected = append(selected, FormatCSV)
	}
	if flags.XLSX {
		selected = append(selected, FormatXLSX)
	}

	switch len(selected) {
	case 0:
		return "", nil
	case 1:
		return selected[0], nil
	}
	return "", usageErrorf("only one of --json, --csv, --xlsx may be given")
}

// formatFromExtension infers a format from the output file name.
func formatFromExtension(path string) Format {
	if path == StdStream {
		return ""
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	}
	return ""
}
