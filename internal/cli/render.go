package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// Supported render formats.
const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatDOT  = "dot"
	formatJSON = "json"
)

// renderCommand creates the render command for producing visual output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		configPath string
		pinned     bool
	)

	cmd := &cobra.Command{
		Use:   "render [topology.json]",
		Short: "Render a BGP topology to SVG, PNG, or DOT",
		Long: `Render a BGP topology to SVG, PNG, or DOT.

The render command runs the full layout pipeline and then draws the result
through Graphviz. AS membership is shown as dashed clusters, routers and
interface nodes as colored ellipses, and topology links carry subnet labels
with the host numbers of both endpoints.

With --pinned the computed positions are passed to Graphviz as fixed pin
coordinates, so the drawing matches the force-directed layout exactly.
Without it Graphviz lays the clusters out itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := validateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], renderParams{
				formats:    formats,
				output:     output,
				configPath: configPath,
				pinned:     pinned,
			})
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with layout engine overrides")
	cmd.Flags().BoolVar(&pinned, "pinned", true, "pin computed positions in the Graphviz output")

	return cmd
}

// renderParams carries the resolved render command flags.
type renderParams struct {
	formats    []string
	output     string
	configPath string
	pinned     bool
}

// runRender computes the layout and writes one artifact per format.
func (c *CLI) runRender(ctx context.Context, input string, p renderParams) error {
	doc, err := topology.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}

	runner, err := c.newRunner(doc, p.configPath)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering topology...")
	spinner.Start()

	res, err := runner.Run(ctx, nil)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("layout: %w", err)
	}

	dot := render.ToDOT(res.Graph, render.DOTOptions{Pinned: p.pinned})

	artifacts := make(map[string][]byte, len(p.formats))
	for _, format := range p.formats {
		data, err := renderArtifact(ctx, format, dot, res.Layout)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	spinner.Stop()

	printSuccess("Rendered %s", strings.Join(p.formats, ", "))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, len(res.Warnings))

	for _, format := range p.formats {
		path := artifactPath(input, p.output, format, len(p.formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// renderArtifact produces the bytes for one output format.
func renderArtifact(ctx context.Context, format, dot string, l render.Layout) ([]byte, error) {
	switch format {
	case formatSVG:
		return render.RenderSVG(ctx, dot)
	case formatPNG:
		return render.RenderPNG(ctx, dot)
	case formatDOT:
		return []byte(dot), nil
	case formatJSON:
		var b strings.Builder
		if err := render.WriteLayout(l, &b); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// artifactPath chooses the output path for one artifact. A single format
// honors -o verbatim; multiple formats treat -o as a base path.
func artifactPath(input, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	if format == formatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// validateFormats rejects unknown format names before any work happens.
func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatSVG, formatPNG, formatDOT, formatJSON:
		default:
			return fmt.Errorf("unsupported format %q (valid: svg, png, dot, json)", f)
		}
	}
	return nil
}
