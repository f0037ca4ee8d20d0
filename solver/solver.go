// Package solver defines the collaborator contracts the monitors
// consume: the parent PDE solver's subdomain surface and the boundary
// solver's geometry, output components, and computation routine.
package solver

import (
	"github.com/notargets/fvmonitor/comm"
	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
)

// Range is a half-open iteration range over mesh points. When Points is
// non-nil it indirects through the list, otherwise the index itself is
// the point.
type Range struct {
	Start, End int
	Points     []int
}

// Point resolves iteration index i to a mesh point.
func (r Range) Point(i int) int {
	if r.Points != nil {
		return r.Points[i]
	}
	return i
}

// Subdomain is the parent solver's view of its distributed mesh and
// current state, read-only from the monitor's perspective.
type Subdomain struct {
	Mesh     *mesh.Mesh
	Disc     *field.Discretization
	Solution *field.Vec
	Comm     comm.Comm
}

// Solver is the generic registered-solver surface.
type Solver interface {
	// ID returns the registered solver identifier, used to namespace
	// monitor output names.
	ID() string
	Subdomain() *Subdomain
	CellRange() Range
}

// FaceGeometry is one boundary-geometry entry: a face and its
// geometric descriptors, including the boundary cell the face bounds.
type FaceGeometry struct {
	FaceID int
	CellID int
	Normal []float64
	Area   float64
}

// OutputFunction computes one named output component for a boundary
// face from the adjacent cell state.
type OutputFunction struct {
	Name     string
	Evaluate func(time float64, geom FaceGeometry, state []float64) (float64, error)
}

// BoundarySolver is the collaborator a boundary monitor requires:
// boundary geometry, an ordered output component set fixed for the
// solver's lifetime, and the computation routine that fills a local
// output vector over the boundary mesh. Any failure of ComputeRHS is
// fatal to the snapshot in progress.
type BoundarySolver interface {
	Solver
	BoundaryGeometry() []FaceGeometry
	OutputComponents() []string
	OutputFunctions() []OutputFunction
	ComputeRHS(time float64, locX, locOut *field.Vec, fns []OutputFunction) error
}
