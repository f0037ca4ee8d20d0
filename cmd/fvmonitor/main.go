// Command fvmonitor runs the boundary solver monitor over a structured
// demo mesh and writes its snapshots to a gob output file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notargets/fvmonitor/comm"
	"github.com/notargets/fvmonitor/config"
	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
	"github.com/notargets/fvmonitor/monitors"
	"github.com/notargets/fvmonitor/processes"
	"github.com/notargets/fvmonitor/solver"
	"github.com/notargets/fvmonitor/viewer"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "fvmonitor",
		Short: "Boundary-face monitoring for the finite-volume solver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}
			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()
			return run(cfg, log)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config.Config, log *zap.Logger) error {
	c := comm.Self{}
	box := mesh.NewBox(cfg.Grid.Nx, cfg.Grid.Ny, cfg.Grid.Width, cfg.Grid.Height)

	disc := field.NewDiscretization(box.Mesh, c)
	disc.AddField("u")
	if err := disc.Setup(); err != nil {
		return err
	}

	sol := disc.GlobalVector()
	defer disc.RestoreGlobalVector(sol)
	for i := range sol.Data {
		sol.Data[i] = 1.0
	}

	sub := &solver.Subdomain{Mesh: box.Mesh, Disc: disc, Solution: sol, Comm: c}

	geometry := make([]solver.FaceGeometry, 0)
	for _, f := range box.BoundaryFaces() {
		support := box.Support(f)
		if len(support) != 1 {
			continue
		}
		geometry = append(geometry, solver.FaceGeometry{FaceID: f, CellID: support[0]})
	}

	flux, err := solver.NewDiffusiveFlux(cfg.SolverID, sub, geometry, cfg.Components, cfg.Coefficients)
	if err != nil {
		return err
	}

	monitor := monitors.NewBoundarySolverMonitor(monitors.WithLogger(log))
	if err := monitor.Register(flux); err != nil {
		return err
	}
	defer monitor.Destroy()

	out, err := viewer.NewGobViewer(cfg.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	var buoyancy *processes.Buoyancy
	if len(cfg.Gravity) > 0 {
		buoyancy = processes.NewBuoyancy(cfg.Gravity)
	}

	sequence := 0
	for step := 0; step < cfg.Steps; step++ {
		t := float64(step) * cfg.Dt
		if buoyancy != nil {
			if err := buoyancy.UpdateAverageDensity(flux); err != nil {
				return err
			}
		}
		if step%cfg.Interval != 0 {
			continue
		}
		if err := monitor.Save(out, sequence, t); err != nil {
			return err
		}
		log.Info("saved snapshot",
			zap.Int("sequence", sequence),
			zap.Float64("time", t),
			zap.String("name", monitor.Name()))
		sequence++
	}

	log.Info("run complete",
		zap.Int("snapshots", sequence),
		zap.Int("boundaryFaces", len(geometry)),
		zap.String("output", cfg.Output))
	return nil
}
