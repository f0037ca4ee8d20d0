package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/fvmonitor/comm"
	"github.com/notargets/fvmonitor/mesh"
)

func TestSetupFromFields(t *testing.T) {
	b := mesh.NewBox(2, 2, 1, 1)
	d := NewDiscretization(b.Mesh, comm.Self{})
	d.AddField("heatFlux")
	d.AddField("massFlux")
	require.NoError(t, d.Setup())

	// One dof per field on each of the 4 cells
	assert.Equal(t, 8, d.LocalSize())
	assert.Equal(t, 8, d.GlobalSize())
	assert.Equal(t, 2, d.BlockSize())

	off, dof, ok := d.PointOffset(2)
	require.True(t, ok)
	assert.Equal(t, 4, off)
	assert.Equal(t, 2, dof)

	// Faces and vertices carry no dofs
	fStart, _ := b.HeightStratum(1)
	_, _, ok = d.PointOffset(fStart)
	assert.False(t, ok)
}

func TestSetupFromExplicitSection(t *testing.T) {
	b := mesh.NewBox(2, 1, 2, 1)
	fStart, fEnd := b.HeightStratum(1)

	sec := mesh.NewSection(fStart, fEnd)
	marked := b.BoundaryFaces()
	for _, f := range marked {
		require.NoError(t, sec.SetDof(f, 3))
	}
	sec.SetUp()

	d := NewDiscretization(b.Mesh, comm.Self{})
	d.SetSection(sec)
	require.NoError(t, d.Setup())

	assert.Equal(t, 3*len(marked), d.LocalSize())
	assert.Equal(t, 3, d.BlockSize())
}

func TestSetupNeedsFieldsOrSection(t *testing.T) {
	b := mesh.NewBox(1, 1, 1, 1)
	d := NewDiscretization(b.Mesh, comm.Self{})
	assert.Error(t, d.Setup())
}

func TestVectorPoolReuse(t *testing.T) {
	b := mesh.NewBox(2, 2, 1, 1)
	d := NewDiscretization(b.Mesh, comm.Self{})
	d.AddField("u")
	require.NoError(t, d.Setup())

	v1 := d.LocalVector()
	v1.Name = "scratch"
	v1.Data[0] = 42
	d.RestoreLocalVector(v1)

	v2 := d.LocalVector()
	assert.Same(t, v1, v2, "pool must hand back the restored vector")
	assert.Empty(t, v2.Name, "pooled vector name must be reset")
	v2.Zero()
	assert.Zero(t, v2.Data[0])
	d.RestoreLocalVector(v2)
}

func TestLocalToGlobalSerial(t *testing.T) {
	b := mesh.NewBox(2, 1, 2, 1)
	d := NewDiscretization(b.Mesh, comm.Self{})
	d.AddField("u")
	require.NoError(t, d.Setup())

	l := d.LocalVector()
	defer d.RestoreLocalVector(l)
	l.Data[0] = 3
	l.Data[1] = 4

	g := d.GlobalVector()
	defer d.RestoreGlobalVector(g)
	g.Zero()
	require.NoError(t, d.LocalToGlobal(l, AddValues, g))
	require.NoError(t, d.LocalToGlobal(l, AddValues, g))
	assert.Equal(t, []float64{6, 8}, g.Data, "additive mode must sum repeated contributions")

	require.NoError(t, d.LocalToGlobal(l, InsertValues, g))
	assert.Equal(t, []float64{3, 4}, g.Data, "insert mode must overwrite")
}

// Two ranks share one face, owned by rank 0 and ghosted on rank 1. A
// section with one dof per face makes the shared dof visible to both.
func splitFaceDisc(t *testing.T, c comm.Comm) (*Discretization, *mesh.Box) {
	b := mesh.NewSplitBox(c.Rank())
	fStart, fEnd := b.HeightStratum(1)
	sec := mesh.NewSection(fStart, fEnd)
	for f := fStart; f < fEnd; f++ {
		require.NoError(t, sec.SetDof(f, 1))
	}
	sec.SetUp()

	d := NewDiscretization(b.Mesh, c)
	d.SetSection(sec)
	require.NoError(t, d.Setup())
	return d, b
}

func TestGhostExchangeInsert(t *testing.T) {
	err := comm.RunGroup(2, func(g *comm.Group) error {
		d, b := splitFaceDisc(t, g)

		// 4 faces locally; rank 1 owns only 3 of them
		assert.Equal(t, 4, d.LocalSize())
		if g.Rank() == 0 {
			assert.Equal(t, 4, d.GlobalSize())
		} else {
			assert.Equal(t, 3, d.GlobalSize())
		}

		gv := d.GlobalVector()
		defer d.RestoreGlobalVector(gv)
		for i := range gv.Data {
			gv.Data[i] = float64(10*g.Rank() + i)
		}

		lv := d.LocalVector()
		defer d.RestoreLocalVector(lv)
		lv.Zero()
		if err := d.GlobalToLocalBegin(gv, lv); err != nil {
			return err
		}
		if err := d.GlobalToLocalEnd(gv, lv); err != nil {
			return err
		}

		if g.Rank() == 1 {
			shared := b.VerticalFace(0, 0)
			loff, _, ok := d.PointOffset(shared)
			require.True(t, ok)
			// Rank 0 wrote value goff at its shared face
			sharedOnOwner := 1 // VerticalFace(1,0) is the second face point on rank 0
			_, _, hasGlobal := d.GlobalPointOffset(shared)
			assert.False(t, hasGlobal, "ghost face must have no global location on rank 1")
			assert.Equal(t, float64(sharedOnOwner), lv.Data[loff],
				"ghost slot must carry the owner's value")
		}
		return nil
	})
	require.NoError(t, err)
}

func TestLocalToGlobalAddAcrossRanks(t *testing.T) {
	err := comm.RunGroup(2, func(g *comm.Group) error {
		d, b := splitFaceDisc(t, g)
		shared := b.VerticalFace(0, 0)
		if g.Rank() == 0 {
			shared = b.VerticalFace(1, 0)
		}

		lv := d.LocalVector()
		defer d.RestoreLocalVector(lv)
		lv.Zero()
		loff, _, ok := d.PointOffset(shared)
		require.True(t, ok)
		lv.Data[loff] = 2.5 // both ranks contribute to the shared face

		gv := d.GlobalVector()
		defer d.RestoreGlobalVector(gv)
		gv.Zero()
		if err := d.LocalToGlobal(lv, AddValues, gv); err != nil {
			return err
		}

		if g.Rank() == 0 {
			goff, _, ok := d.GlobalPointOffset(shared)
			require.True(t, ok)
			assert.Equal(t, 5.0, gv.Data[goff], "owner must hold the sum of both contributions")
		}
		return nil
	})
	require.NoError(t, err)
}
