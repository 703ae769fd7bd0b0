// =============================================================================
// Contact Converter - Version
// =============================================================================
//
// The root command prints this information for --version.
//
// OUTPUT:
//   Contact Converter
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.11
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
)

// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/contact-converter/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionTemplate renders the --version output. Values are inserted here
// rather than through the template engine.
func versionTemplate() string {
	return fmt.Sprintf("Contact Converter\nVersion:    %s\nBuild Date: %s\nGo Version: %s\n",
		Version, BuildDate, runtime.Version())
}
