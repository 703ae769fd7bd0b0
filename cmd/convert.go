// =============================================================================
// Contact Converter - Convert
// =============================================================================
//
// This file connects the root command to the conversion pipeline:
//   1. Load the optional YAML defaults file
//   2. Resolve flags into validated options (conflicts are usage errors)
//   3. Run the converter
//
// No input is read and no output is written before step 2 succeeds.
//
// =============================================================================

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/contact-converter/internal/config"
	"github.com/ginjaninja78/contact-converter/internal/converter"
	"github.com/ginjaninja78/contact-converter/internal/logging"
	"github.com/ginjaninja78/contact-converter/pkg/utils"
)

// runConvert validates the invocation and runs the pipeline.
func runConvert(cmd *cobra.Command, flags *rootFlags, args []string, files *utils.FileManager) error {
	file, err := config.LoadFile(flags.cfgFile)
	if err != nil {
		return err
	}

	opts, err := config.Resolve(config.Flags{
		Files:      args,
		Verbosity:  flags.verbosity,
		Output:     flags.output,
		JSON:       flags.json,
		CSV:        flags.csv,
		XLSX:       flags.xlsx,
		Pretty:     flags.pretty,
		Dialect:    flags.dialect,
		DialectSet: flagChanged(cmd.Flags(), "csv-dialect"),
	}, file)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbosity)

	result, err := converter.New(opts, files, logger).Run()
	if err != nil {
		return err
	}

	logger.Debug("converted %d contact(s): %d name(s), %d email address(es)",
		len(result.Contacts), result.Stats.NamesParsed, result.Stats.EmailsParsed)

	return nil
}

// newLogger styles output only when writing to the real standard error.
func newLogger(w io.Writer, verbosity int) logging.Logger {
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		return logging.New(verbosity)
	}
	return logging.NewWriter(w, verbosity)
}
