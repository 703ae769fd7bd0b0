// =============================================================================
// Contact Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The converter has no
// subcommands: the root command takes the input files directly.
//
// COMMAND USAGE:
//   contactparser [flags] file...
//
// FLAGS:
//   -v, --verbose      : Repeatable; -v prints data-loss warnings, -vv traces stages
//   -o, --output       : Output file, "-" for standard output (default)
//   --json / --pretty  : JSON output, optionally sorted and indented
//   --csv / --csv-dialect : CSV output with excel, excel-tab or unix conventions
//   --xlsx             : Excel workbook output
//   --config           : Optional YAML file with default settings
//   --completion       : Print a shell completion script
//
// EXIT STATUS:
//   0    : Success
//   1    : Malformed input or I/O failure
//   1337 : Usage error or unsupported output format
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ginjaninja78/contact-converter/internal/config"
	"github.com/ginjaninja78/contact-converter/internal/output"
	"github.com/ginjaninja78/contact-converter/pkg/utils"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 1337
)

// =============================================================================
// FLAG VALUES
// =============================================================================

// rootFlags holds the values bound to the root command's flags.
type rootFlags struct {
	cfgFile    string
	verbosity  int
	output     string
	json       bool
	pretty     bool
	csv        bool
	dialect    string
	xlsx       bool
	completion string
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// NewRootCommand builds the root command. Inputs are read and output is
// written through files.
func NewRootCommand(files *utils.FileManager) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "contactparser [flags] file...",
		Short: "Convert Microsoft .contact files into JSON, CSV or XLSX",
		Long: `contactparser reads one or more Microsoft .contact files and writes a
single document containing every contact.

JSON output keeps all names and email addresses of each contact. CSV and XLSX
output flatten each contact into one row with the columns

  FormattedName, GivenName, FamilyName, Email-Preferred, Email-1 .. Email-4

Values that do not fit are dropped; run with -v to see what gets lost.

When no format flag is given, the format is taken from the output file
extension, then from --pretty (json) or --csv-dialect (csv), then from the
config file, and finally defaults to json.

Example Usage:
  contactparser Jane.contact John.contact           # JSON to standard output
  contactparser --pretty *.contact                  # Indented JSON
  contactparser -o contacts.csv *.contact           # CSV, detected from the extension
  contactparser --csv --csv-dialect excel -v *.contact
  cat Jane.contact | contactparser --xlsx -o jane.xlsx -`,

		Version: Version,

		Args: func(cmd *cobra.Command, args []string) error {
			if flags.completion != "" {
				if len(args) > 0 {
					return &config.UsageError{Msg: "'--completion' takes no input files"}
				}
				return nil
			}
			if len(args) == 0 {
				return &config.UsageError{Msg: "the following arguments are required: file"}
			}
			return nil
		},

		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"contact"}, cobra.ShellCompDirectiveFilterFileExt
		},

		// Errors are printed by Execute so the exit status can be chosen.
		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.completion != "" {
				return writeCompletion(cmd, flags.completion)
			}
			return runConvert(cmd, flags, args, files)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &config.UsageError{Msg: err.Error()}
	})
	rootCmd.SetVersionTemplate(versionTemplate())

	registerFlags(rootCmd, flags)

	return rootCmd
}

// registerFlags declares the flags and their shell completions.
func registerFlags(rootCmd *cobra.Command, flags *rootFlags) {
	f := rootCmd.Flags()
	f.SortFlags = false

	f.CountVarP(&flags.verbosity, "verbose", "v",
		"print debug messages to stderr, -vv for more")
	f.StringVarP(&flags.output, "output", "o", config.StdStream,
		"the output file, - for stdout")
	f.StringVar(&flags.cfgFile, "config", "",
		"YAML file with default settings")

	f.BoolVar(&flags.json, "json", false, "output format is json")
	f.BoolVar(&flags.pretty, "pretty", false, "make json pretty and not compact")

	f.BoolVar(&flags.csv, "csv", false, "output format is csv")
	f.StringVar(&flags.dialect, "csv-dialect", string(config.DialectUnix),
		"the csv dialect: "+dialectNames())

	f.BoolVar(&flags.xlsx, "xlsx", false, "output format is xlsx")

	f.StringVar(&flags.completion, "completion", "",
		"print a completion script for bash, zsh, fish or powershell")

	rootCmd.RegisterFlagCompletionFunc("csv-dialect", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return strings.Split(dialectNames(), ", "), cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("completion", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"bash", "zsh", "fish", "powershell"}, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("config", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

func dialectNames() string {
	names := make([]string, len(config.Dialects))
	for i, d := range config.Dialects {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// flagChanged reports whether the named flag was given on the command line.
func flagChanged(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// =============================================================================
// COMPLETION
// =============================================================================

func writeCompletion(cmd *cobra.Command, shell string) error {
	out := cmd.OutOrStdout()
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletionV2(out, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	}
	return &config.UsageError{Msg: fmt.Sprintf("unsupported shell %q for --completion", shell)}
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command with the process arguments and exits with
// the resulting status. It is called by main.main().
func Execute() {
	os.Exit(Run(os.Args[1:], utils.NewFileManager(), os.Stderr))
}

// Run executes the root command with args and returns the exit status.
// Diagnostics are written to stderr.
func Run(args []string, files *utils.FileManager, stderr io.Writer) int {
	rootCmd := NewRootCommand(files)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(files.Stdout)
	rootCmd.SetErr(stderr)

	return exitStatus(rootCmd.Execute(), rootCmd, stderr)
}

// exitStatus reports err on stderr and maps it to an exit status.
func exitStatus(err error, rootCmd *cobra.Command, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}

	logger := newLogger(stderr, 0)

	var usageErr *config.UsageError
	var formatErr *output.UnsupportedFormatError

	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(stderr, "usage: %s\n", rootCmd.UseLine())
		logger.Error("%v", err)
		return ExitUsage

	case errors.As(err, &formatErr):
		logger.Error("%v", err)
		return ExitUsage
	}

	logger.Error("%v", err)
	return ExitFailure
}
