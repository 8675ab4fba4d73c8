// Package cli implements the bgpmap command-line interface.
//
// This package provides commands for validating BGP topology documents,
// computing force-directed layouts, rendering them to DOT/SVG/PNG, serving
// the layout API over HTTP, and replaying edit-event logs. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/buildinfo"
	"github.com/netscale-tools/bgpmap/pkg/pipeline"
	"github.com/netscale-tools/bgpmap/pkg/state"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bgpmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "bgpmap",
		Short:        "bgpmap lays out and renders BGP network topologies",
		Long:         `bgpmap turns raw BGP topology documents (AS nodes, routers, links) into positioned network maps using a hierarchically constrained force-directed layout, and renders or serves the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.eventsCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(doc topology.Document, configPath string) (*pipeline.Runner, error) {
	return pipeline.NewRunner(doc, pipeline.Options{
		ConfigPath: configPath,
		Logger:     c.Logger,
	})
}

// =============================================================================
// Paths
// =============================================================================

// stateDir returns the view-state directory using XDG standard
// (~/.local/state/bgpmap/).
func stateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}

// openFileStore opens the on-disk view-state store, defaulting to stateDir.
func openFileStore(dir string) (*state.FileStore, error) {
	if dir == "" {
		var err error
		dir, err = stateDir()
		if err != nil {
			return nil, err
		}
	}
	return state.NewFileStore(dir)
}

// =============================================================================
// Helpers
// =============================================================================

// stateKeyFor derives the default view-state key from the input path.
func stateKeyFor(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath resolves the output flag against a default derived from the
// input file name.
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
