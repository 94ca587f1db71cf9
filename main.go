// =============================================================================
// gomarc - Main Entry Point
// =============================================================================
//
// This is the main entry point for the gomarc CLI. It initializes the Cobra
// CLI framework and delegates command execution to the cmd package.
//
// USAGE:
//   gomarc convert        - Convert records between serialized formats
//   gomarc version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Configuration, logging, and the conversion pipeline
//   - pkg/marc/  : The record model, codecs, readers, and writer family
//
// =============================================================================

package main

import (
	"github.com/andrmayo/gomarc/cmd"
)

func main() {
	cmd.Execute()
}
