// Package viewer defines the output-stream contract the monitors write
// to, plus a gob-backed file writer and an in-memory recorder for
// tests. On-disk format and versioning are the viewer's business and
// opaque to the monitors.
package viewer

import (
	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
)

// Viewer persists a monitor's output: a one-time topology record at the
// first snapshot and one named, sequence/time-tagged vector per
// snapshot. SetSequence must be called before any vector is written for
// that snapshot.
type Viewer interface {
	ViewMesh(m *mesh.Mesh) error
	SetSequence(sequence int, time float64) error
	ViewVec(v *field.Vec) error
}

// Topology is the serialized form of a mesh's structure.
type Topology struct {
	Dim         int
	Strata      []mesh.Stratum
	Cones       [][]int
	Coordinates []float64
}

// TopologyOf captures a mesh's topology record.
func TopologyOf(m *mesh.Mesh) Topology {
	t := Topology{
		Dim:    m.Dim(),
		Strata: append([]mesh.Stratum(nil), m.Strata()...),
	}
	_, end := m.Chart()
	t.Cones = make([][]int, end)
	for p := 0; p < end; p++ {
		t.Cones[p] = append([]int(nil), m.Cone(p)...)
	}
	t.Coordinates = append([]float64(nil), m.Coordinates()...)
	return t
}
