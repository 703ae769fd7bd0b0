// =============================================================================
// Contact Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the contactparser CLI. It delegates to the
// cmd package, which parses the flags and runs the conversion.
//
// ARCHITECTURE:
//   cmd/           : Cobra root command, flag handling, exit status
//   internal/      : Parsing, flattening, rendering and configuration
//   pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/contact-converter/cmd"
)

func main() {
	cmd.Execute()
}
