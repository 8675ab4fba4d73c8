package layout

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config carries every layout tunable: viewport, band geometry, force
// constants, and iteration budgets. The zero value is not usable; start from
// [DefaultConfig] and override selectively, or load overrides from a TOML
// file with [LoadConfigFile].
type Config struct {
	// Viewport dimensions in layout units.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// ASBand is the fractional viewport height of the AS row.
	ASBand float64 `toml:"as_band"`
	// RouterBandTop and RouterBandBottom bound the router band, as fractions
	// of the viewport height.
	RouterBandTop    float64 `toml:"router_band_top"`
	RouterBandBottom float64 `toml:"router_band_bottom"`
	// ASGridThreshold is the AS count above which seeding switches from a
	// single horizontal row to a grid.
	ASGridThreshold int `toml:"as_grid_threshold"`

	// RouterRadius is the seeding circle radius around each AS.
	RouterRadius float64 `toml:"router_radius"`
	// InterfaceRadius is the base seeding circle radius around each router;
	// InterfaceRadiusStep is added per interface beyond the fourth so crowded
	// routers spread their ports wider.
	InterfaceRadius     float64 `toml:"interface_radius"`
	InterfaceRadiusStep float64 `toml:"interface_radius_step"`

	// MaxInterfaceDist is the hard containment bound: after integration an
	// interface is clamped back onto this distance from its router.
	MaxInterfaceDist float64 `toml:"max_interface_dist"`

	// Repulsion is the inverse-square constant for ordinary node pairs;
	// InterfaceRepulsion replaces it when both nodes are interfaces, which
	// must spread more aggressively to stay readable.
	Repulsion          float64 `toml:"repulsion"`
	InterfaceRepulsion float64 `toml:"interface_repulsion"`
	// Attraction is the linear spring constant applied along every edge.
	Attraction float64 `toml:"attraction"`
	// Containment is the extra spring pulling an interface toward its
	// router, applied whether or not a topology edge exists.
	Containment float64 `toml:"containment"`
	// Damping scales both the velocity applied to positions and the retained
	// velocity each iteration.
	Damping float64 `toml:"damping"`

	// FullIterations is the budget for the initial layout;
	// RealtimeIterations is the reduced budget used after incremental edits.
	FullIterations     int `toml:"full_iterations"`
	RealtimeIterations int `toml:"realtime_iterations"`

	// ASNodesLocked pins AS containers at their seeded positions instead of
	// only constraining them to the AS band.
	ASNodesLocked bool `toml:"as_nodes_locked"`

	// Seed drives the per-call angular offset randomization during seeding.
	Seed uint64 `toml:"seed"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Width:  1600,
		Height: 1000,

		ASBand:           0.12,
		RouterBandTop:    0.30,
		RouterBandBottom: 0.70,
		ASGridThreshold:  8,

		RouterRadius:        140,
		InterfaceRadius:     60,
		InterfaceRadiusStep: 10,
		MaxInterfaceDist:    90,

		Repulsion:          4000,
		InterfaceRepulsion: 9000,
		Attraction:         0.015,
		Containment:        0.05,
		Damping:            0.9,

		FullIterations:     300,
		RealtimeIterations: 60,

		Seed: 42,
	}
}

// LoadConfigFile applies TOML overrides from path on top of base. Keys absent
// from the file keep their base values.
func LoadConfigFile(base Config, path string) (Config, error) {
	cfg := base
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load layout config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load layout config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// asBandY returns the viewport y of the AS row.
func (c Config) asBandY() float64 { return c.ASBand * c.Height }

// routerBandY returns the clamped router band as absolute coordinates.
func (c Config) routerBandY() (top, bottom float64) {
	return c.RouterBandTop * c.Height, c.RouterBandBottom * c.Height
}
