package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// generateCommand creates the generate command for producing a sample topology.
func (c *CLI) generateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sample BGP topology document",
		Long: `Generate a sample BGP topology document.

The sample has four autonomous systems and five routers with interface IPs
assigned from /30 point-to-point subnets. It is a convenient starting point
for trying out 'layout', 'render', and 'serve'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

// runGenerate writes the example document to the output file or stdout.
func (c *CLI) runGenerate(output string) error {
	doc := topology.ExampleDocument()

	if output == "" {
		return topology.WriteDocument(doc, os.Stdout)
	}

	if err := topology.WriteDocumentFile(doc, output); err != nil {
		return fmt.Errorf("write topology: %w", err)
	}
	printSuccess("Sample topology written")
	printStats(len(doc.Nodes), len(doc.Edges), 0)
	printFile(output)
	return nil
}
