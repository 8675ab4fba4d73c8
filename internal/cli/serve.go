package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/internal/server"
	"github.com/netscale-tools/bgpmap/pkg/state"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// State store backends for the serve command.
const (
	backendFile  = "file"
	backendRedis = "redis"
)

// serveCommand creates the serve command for the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		configPath    string
		backend       string
		stateDirPath  string
		stateKey      string
		redisAddr     string
		redisPassword string
		redisDB       int
	)

	cmd := &cobra.Command{
		Use:   "serve [topology.json]",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

The server owns one topology and its edit-event log. Clients fetch the
positioned graph from /api/layout, apply incremental edits through
/api/edits, time-travel through /api/replay/{n}, and persist per-user view
state (positions, colors, locked nodes) through /api/state. Prometheus
metrics are exposed on /metrics.

View state is stored on disk by default; --state-backend redis switches to
a shared Redis instance so multiple server replicas see the same state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := stateKey
			if key == "" {
				key = stateKeyFor(args[0])
			}
			return c.runServe(cmd.Context(), args[0], serveParams{
				addr:       addr,
				configPath: configPath,
				backend:    backend,
				stateDir:   stateDirPath,
				stateKey:   key,
				redis: state.RedisConfig{
					Addr:     redisAddr,
					Password: redisPassword,
					DB:       redisDB,
				},
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with layout engine overrides")
	cmd.Flags().StringVar(&backend, "state-backend", backendFile, "view-state backend: file (default), redis")
	cmd.Flags().StringVar(&stateDirPath, "state-dir", "", "view-state directory for the file backend")
	cmd.Flags().StringVar(&stateKey, "state-key", "", "view-state key (default: input file name)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address for the redis backend")
	cmd.Flags().StringVar(&redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")

	return cmd
}

// serveParams carries the resolved serve command flags.
type serveParams struct {
	addr       string
	configPath string
	backend    string
	stateDir   string
	stateKey   string
	redis      state.RedisConfig
}

// runServe builds the runner and store and blocks until shutdown.
func (c *CLI) runServe(ctx context.Context, input string, p serveParams) error {
	doc, err := topology.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}

	runner, err := c.newRunner(doc, p.configPath)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	store, err := c.openStore(ctx, p)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(runner, store, p.stateKey, p.backend, c.Logger)
	httpSrv := &http.Server{
		Addr:              p.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Error("shutdown", "err", err)
		}
	}()

	c.Logger.Info("serving layout API", "addr", p.addr, "backend", p.backend, "key", p.stateKey)
	printInfo("Listening on %s", p.addr)

	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return ctx.Err()
}

// openStore creates the view-state store named by the backend flag.
func (c *CLI) openStore(ctx context.Context, p serveParams) (state.Store, error) {
	switch p.backend {
	case backendFile:
		return openFileStore(p.stateDir)
	case backendRedis:
		return state.NewRedisStore(ctx, p.redis)
	default:
		return nil, fmt.Errorf("unknown state backend %q (valid: file, redis)", p.backend)
	}
}
