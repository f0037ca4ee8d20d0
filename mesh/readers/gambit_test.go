package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two tetrahedra sharing the face {1, 2, 3}.
func twoTets() ([][]int, [][]float64) {
	etov := [][]int{
		{0, 1, 2, 3},
		{1, 2, 3, 4},
	}
	vertices := [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	}
	return etov, vertices
}

func TestBuildTetPlexDeduplicatesFaces(t *testing.T) {
	etov, vertices := twoTets()
	m := buildTetPlex(etov, vertices)

	cStart, cEnd := m.HeightStratum(0)
	assert.Equal(t, 2, cEnd-cStart)
	fStart, fEnd := m.HeightStratum(1)
	assert.Equal(t, 7, fEnd-fStart, "4 + 4 faces minus the shared one")
	vStart, vEnd := m.HeightStratum(2)
	assert.Equal(t, 5, vEnd-vStart)

	// Each cell's cone is its four faces
	for c := cStart; c < cEnd; c++ {
		require.Len(t, m.Cone(c), 4)
		for _, f := range m.Cone(c) {
			assert.Equal(t, 1, m.Height(f))
		}
	}

	// Exactly one face is bounded by both cells
	shared := 0
	for f := fStart; f < fEnd; f++ {
		if len(m.Support(f)) == 2 {
			shared++
		}
	}
	assert.Equal(t, 1, shared)
}

func TestBuildTetPlexCoordinates(t *testing.T) {
	etov, vertices := twoTets()
	m := buildTetPlex(etov, vertices)

	vStart, _ := m.HeightStratum(2)
	assert.Equal(t, []float64{1, 0, 0}, m.VertexCoords(vStart+1))
	assert.Equal(t, []float64{1, 1, 1}, m.VertexCoords(vStart+4))
}

func TestBoundaryFaces(t *testing.T) {
	etov, vertices := twoTets()
	m := buildTetPlex(etov, vertices)

	faces := BoundaryFaces(m)
	assert.Len(t, faces, 6)
	for i := 1; i < len(faces); i++ {
		assert.Less(t, faces[i-1], faces[i])
	}
	for _, f := range faces {
		assert.Len(t, m.Support(f), 1)
	}
}
