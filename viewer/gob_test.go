package viewer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/fvmonitor/comm"
	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
)

func newOutputVec(t *testing.T, m *mesh.Mesh, data []float64) *field.Vec {
	t.Helper()
	d := field.NewDiscretization(m, comm.Self{})
	d.AddField("q")
	require.NoError(t, d.Setup())
	v := d.GlobalVector()
	require.Len(t, v.Data, len(data))
	copy(v.Data, data)
	return v
}

func TestGobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gob")

	b := mesh.NewBox(2, 1, 2, 1)
	v, err := NewGobViewer(path)
	require.NoError(t, err)

	require.NoError(t, v.ViewMesh(b.Mesh))

	vec := newOutputVec(t, b.Mesh, []float64{1.5, -2.5})
	vec.Name = "flow_boundarySolverMonitor"
	require.NoError(t, v.SetSequence(0, 0))
	require.NoError(t, v.ViewVec(vec))

	vec.Data[0] = 3.0
	require.NoError(t, v.SetSequence(1, 0.25))
	require.NoError(t, v.ViewVec(vec))

	require.NoError(t, v.Close())

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	top := records[0]
	assert.Equal(t, recordTopology, top.Kind)
	require.NotNil(t, top.Topology)
	assert.Equal(t, 2, top.Topology.Dim)
	assert.Equal(t, b.Strata(), top.Topology.Strata)
	assert.Equal(t, b.Cone(0), top.Topology.Cones[0])
	assert.Equal(t, b.Coordinates(), top.Topology.Coordinates)

	first := records[1]
	assert.Equal(t, recordField, first.Kind)
	assert.Equal(t, 0, first.Sequence)
	assert.Equal(t, "flow_boundarySolverMonitor", first.Name)
	assert.Equal(t, []float64{1.5, -2.5}, first.Data)

	second := records[2]
	assert.Equal(t, 1, second.Sequence)
	assert.Equal(t, 0.25, second.Time)
	assert.Equal(t, []float64{3.0, -2.5}, second.Data)
}

func TestReadRecordsMissingFile(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestMemoryTopologyDeterministic(t *testing.T) {
	m := NewMemory()
	b := mesh.NewBox(3, 2, 3, 2)
	require.NoError(t, m.ViewMesh(b.Mesh))
	require.NoError(t, m.ViewMesh(b.Mesh))
	require.Len(t, m.TopologyRecords, 2)
	assert.Equal(t, m.TopologyRecords[0], m.TopologyRecords[1])
}

func TestMemoryTagsSnapshots(t *testing.T) {
	m := NewMemory()
	b := mesh.NewBox(1, 1, 1, 1)
	vec := newOutputVec(t, b.Mesh, []float64{7})
	vec.Name = "probe"

	require.NoError(t, m.SetSequence(4, 2.0))
	require.NoError(t, m.ViewVec(vec))

	// The recorder must copy, not alias
	vec.Data[0] = 0

	require.Len(t, m.Snapshots, 1)
	s := m.Snapshots[0]
	assert.Equal(t, 4, s.Sequence)
	assert.Equal(t, 2.0, s.Time)
	assert.Equal(t, "probe", s.Name)
	assert.Equal(t, []float64{7.0}, s.Data)
}
