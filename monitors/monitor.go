// Package monitors implements snapshot monitors attached to registered
// solvers. The boundary solver monitor builds a derived mesh of
// boundary faces and, at each snapshot, remaps computed boundary
// quantities onto it for serialization.
package monitors

import (
	"errors"

	"github.com/notargets/fvmonitor/solver"
	"github.com/notargets/fvmonitor/viewer"
)

// Monitor observes a registered solver and persists snapshots of
// derived quantities. Register runs once; Save runs per snapshot.
// Every failure surfaced by either is fatal to that operation: no
// partial snapshot is written and no retry is attempted.
type Monitor interface {
	Register(s solver.Solver) error
	Save(v viewer.Viewer, sequence int, time float64) error
	Destroy()
}

// Configuration errors detected at registration time.
var (
	// ErrNotBoundarySolver is returned when a monitor that requires a
	// boundary solver is attached to any other solver type.
	ErrNotBoundarySolver = errors.New("monitor requires a boundary solver")

	// ErrInvalidFace is returned when a boundary-geometry entry names
	// a face outside the mesh's face range.
	ErrInvalidFace = errors.New("face id outside mesh face range")
)
