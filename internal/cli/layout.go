package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/layout"
	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/state"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output       string
		configPath   string
		stateDirPath string
		stateKey     string
		noState      bool
	)

	cmd := &cobra.Command{
		Use:   "layout [topology.json]",
		Short: "Compute a force-directed layout for a BGP topology",
		Long: `Compute a force-directed layout for a BGP topology.

The layout command validates the document, derives the layered graph
(AS nodes, routers, interface nodes), seeds positions into the horizontal
bands, refines them with the force engine, and reduces edge crossings. The
output is a layout.json file with final positions that 'render' and browser
clients consume.

Saved view state (from a previous 'serve' session) is applied when present:
nodes with stored positions skip seeding, and locked nodes keep their place
through the force pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := stateKey
			if key == "" {
				key = stateKeyFor(args[0])
			}
			return c.runLayout(cmd.Context(), args[0], layoutParams{
				output:     outputPath(output, args[0], ".layout.json"),
				configPath: configPath,
				stateDir:   stateDirPath,
				stateKey:   key,
				noState:    noState,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with layout engine overrides")
	cmd.Flags().StringVar(&stateDirPath, "state-dir", "", "view-state directory (default: XDG state dir)")
	cmd.Flags().StringVar(&stateKey, "state-key", "", "view-state key (default: input file name)")
	cmd.Flags().BoolVar(&noState, "no-state", false, "ignore saved view state")

	return cmd
}

// layoutParams carries the resolved layout command flags.
type layoutParams struct {
	output     string
	configPath string
	stateDir   string
	stateKey   string
	noState    bool
}

// runLayout executes a full-budget layout pass and writes the result.
func (c *CLI) runLayout(ctx context.Context, input string, p layoutParams) error {
	doc, err := topology.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}

	runner, err := c.newRunner(doc, p.configPath)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	saved, err := c.loadSavedState(ctx, p)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	track := newProgress(c.Logger)
	res, err := runner.Run(ctx, saved)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout: %w", err)
	}
	spinner.Stop()
	track.done(fmt.Sprintf("Positioned %d nodes", res.Stats.NodeCount))

	if err := render.WriteLayoutFile(res.Layout, p.output); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	printSuccess("Layout computed")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, len(res.Warnings))
	printFile(p.output)
	return nil
}

// loadSavedState fetches stored positions and lock flags, if any.
func (c *CLI) loadSavedState(ctx context.Context, p layoutParams) (map[string]layout.SavedNode, error) {
	if p.noState {
		return nil, nil
	}

	store, err := openFileStore(p.stateDir)
	if err != nil {
		return nil, fmt.Errorf("open view-state store: %w", err)
	}
	defer store.Close()

	v, err := store.Load(ctx, p.stateKey)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load view state: %w", err)
	}
	c.Logger.Debug("applying saved view state", "key", p.stateKey, "positions", len(v.Positions))
	return v.SavedNodes(), nil
}
