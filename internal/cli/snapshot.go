package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/state"
)

// snapshotCommand creates the snapshot command group for the layout archive.
func (c *CLI) snapshotCommand() *cobra.Command {
	var cfg state.ArchiveConfig

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage archived layouts in MongoDB",
		Long: `Manage archived layouts in MongoDB.

Snapshots are named, fully positioned layouts. Saving one preserves the
picture as it was computed; loading one later reproduces it without running
the layout engine again. Useful for before/after comparisons of topology
changes.`,
	}

	cmd.PersistentFlags().StringVar(&cfg.URI, "uri", "mongodb://localhost:27017", "MongoDB connection URI")
	cmd.PersistentFlags().StringVar(&cfg.Database, "database", "bgpmap", "MongoDB database name")
	cmd.PersistentFlags().StringVar(&cfg.Collection, "collection", "layouts", "MongoDB collection name")

	cmd.AddCommand(c.snapshotSaveCommand(&cfg))
	cmd.AddCommand(c.snapshotLoadCommand(&cfg))
	cmd.AddCommand(c.snapshotListCommand(&cfg))
	cmd.AddCommand(c.snapshotDeleteCommand(&cfg))

	return cmd
}

func (c *CLI) snapshotSaveCommand(cfg *state.ArchiveConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [layout.json]",
		Short: "Archive a computed layout under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := render.ReadLayoutFile(args[1])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[1], err)
			}
			return c.withArchive(cmd.Context(), *cfg, func(ctx context.Context, a *state.Archive) error {
				if err := a.Save(ctx, args[0], l); err != nil {
					return err
				}
				printSuccess("Snapshot %q saved", args[0])
				printStats(len(l.Nodes), len(l.Edges), 0)
				return nil
			})
		},
	}
}

func (c *CLI) snapshotLoadCommand(cfg *state.ArchiveConfig) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Retrieve an archived layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output
			if out == "" {
				out = args[0] + ".layout.json"
			}
			return c.withArchive(cmd.Context(), *cfg, func(ctx context.Context, a *state.Archive) error {
				snap, err := a.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if err := render.WriteLayoutFile(snap.Layout, out); err != nil {
					return fmt.Errorf("write layout: %w", err)
				}
				printSuccess("Snapshot %q loaded", args[0])
				printDetail("saved %s", snap.SavedAt.Format("2006-01-02 15:04:05"))
				printFile(out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.layout.json)")

	return cmd
}

func (c *CLI) snapshotListCommand(cfg *state.ArchiveConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(cmd.Context(), *cfg, func(ctx context.Context, a *state.Archive) error {
				snaps, err := a.List(ctx)
				if err != nil {
					return err
				}
				if len(snaps) == 0 {
					printInfo("No snapshots archived")
					return nil
				}
				for _, s := range snaps {
					printKeyValue(s.Name, s.SavedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}
}

func (c *CLI) snapshotDeleteCommand(cfg *state.ArchiveConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete an archived layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(cmd.Context(), *cfg, func(ctx context.Context, a *state.Archive) error {
				if err := a.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Snapshot %q deleted", args[0])
				return nil
			})
		},
	}
}

// withArchive connects to the archive, runs fn, and disconnects.
func (c *CLI) withArchive(ctx context.Context, cfg state.ArchiveConfig, fn func(context.Context, *state.Archive) error) error {
	archive, err := state.NewArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := archive.Close(ctx); err != nil {
			c.Logger.Warn("disconnect archive", "err", err)
		}
	}()
	return fn(ctx, archive)
}
