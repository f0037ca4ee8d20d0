package viewer

import (
	"bytes"
	"encoding/gob"

	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
)

// Snapshot is one recorded vector view.
type Snapshot struct {
	Sequence int
	Time     float64
	Name     string
	Data     []float64
}

// Memory records everything written to it, for tests. Topology records
// are kept as encoded bytes so identical inputs can be compared
// byte-for-byte.
type Memory struct {
	TopologyRecords [][]byte
	Snapshots       []Snapshot

	sequence int
	time     float64
}

// NewMemory creates an empty recorder.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) ViewMesh(msh *mesh.Mesh) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(TopologyOf(msh)); err != nil {
		return err
	}
	m.TopologyRecords = append(m.TopologyRecords, buf.Bytes())
	return nil
}

func (m *Memory) SetSequence(sequence int, time float64) error {
	m.sequence = sequence
	m.time = time
	return nil
}

func (m *Memory) ViewVec(v *field.Vec) error {
	m.Snapshots = append(m.Snapshots, Snapshot{
		Sequence: m.sequence,
		Time:     m.time,
		Name:     v.Name,
		Data:     append([]float64(nil), v.Data...),
	})
	return nil
}
