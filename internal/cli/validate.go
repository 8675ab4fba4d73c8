package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// validateCommand creates the validate command for checking topology documents.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [topology.json]",
		Short: "Validate a BGP topology document",
		Long: `Validate a BGP topology document.

Structural problems (duplicate or missing node ids, edges naming unknown
nodes or interfaces, unresolvable parents) are fatal and reported together.
Semantic anomalies (duplicate interface IPs, link endpoints outside the
link's subnet, repeated links between the same routers) are warnings: the
document is still usable, but the data likely has a mistake.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}

	return cmd
}

// runValidate loads the document and reports warnings and fatal errors.
func (c *CLI) runValidate(input string) error {
	doc, err := topology.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}

	warnings, err := topology.Validate(doc)
	for _, w := range warnings {
		printWarning("%s", w.String())
	}
	if err != nil {
		printError("Document rejected")
		return err
	}

	printSuccess("Document is valid")
	printStats(len(doc.Nodes), len(doc.Edges), len(warnings))
	return nil
}
