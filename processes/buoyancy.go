// Package processes holds finite-volume source-term processes that
// cooperate with the solver's stepping loop.
package processes

import (
	"fmt"

	"github.com/notargets/fvmonitor/solver"
)

// Buoyancy adds a gravity source term relative to the domain-average
// density. The average is refreshed before each step with a collective
// sum over every rank's owned cells; the source itself is a local
// kernel.
type Buoyancy struct {
	// Gravity is the gravitational acceleration vector.
	Gravity []float64

	densityAvg float64
}

// NewBuoyancy creates the process for the given gravity vector.
func NewBuoyancy(gravity []float64) *Buoyancy {
	return &Buoyancy{Gravity: append([]float64(nil), gravity...)}
}

// UpdateAverageDensity recomputes the domain-average density from the
// solver's current solution. Collective over the subdomain's
// communicator. Density is the first component of each cell's state
// block; cells without a global location (ghosts) are skipped so every
// physical cell is counted exactly once.
func (b *Buoyancy) UpdateAverageDensity(s solver.Solver) error {
	sub := s.Subdomain()

	locSum := 0.0
	locCount := 0.0
	rng := s.CellRange()
	for i := rng.Start; i < rng.End; i++ {
		cell := rng.Point(i)
		off, dof, ok := sub.Disc.GlobalPointOffset(cell)
		if !ok || dof == 0 {
			continue
		}
		locSum += sub.Solution.Data[off]
		locCount++
	}

	out, err := sub.Comm.AllReduceSum([]float64{locSum, locCount})
	if err != nil {
		return fmt.Errorf("density reduction: %w", err)
	}
	if out[1] == 0 {
		return fmt.Errorf("no cells contributed to the density average")
	}
	b.densityAvg = out[0] / out[1]
	return nil
}

// DensityAverage returns the last computed domain-average density.
func (b *Buoyancy) DensityAverage() float64 { return b.densityAvg }

// Source fills the momentum source for a cell of the given density:
// (rho - rhoAvg) * g per direction.
func (b *Buoyancy) Source(density float64, source []float64) {
	for i, g := range b.Gravity {
		if i >= len(source) {
			return
		}
		source[i] = (density - b.densityAvg) * g
	}
}
