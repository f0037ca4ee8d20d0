// Package readers builds plex meshes from external mesh files through
// gocfd's Gambit/SU2 readers.
package readers

import (
	"fmt"
	"sort"

	"github.com/notargets/gocfd/DG3D/mesh/readers"

	"github.com/notargets/fvmonitor/mesh"
)

// ReadTetMesh reads a tetrahedral mesh file and derives the plex
// structure the monitors need: cells, a deduplicated face stratum
// (each face keyed by its sorted vertex triple), and vertices with
// coordinates.
func ReadTetMesh(meshfile string) (*mesh.Mesh, error) {
	msh, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", meshfile, err)
	}
	if len(msh.EtoV) == 0 {
		return nil, fmt.Errorf("mesh file %s has no elements", meshfile)
	}
	for k, verts := range msh.EtoV {
		if len(verts) != 4 {
			return nil, fmt.Errorf("mesh file %s: element %d has %d vertices, want tetrahedra", meshfile, k, len(verts))
		}
	}
	return buildTetPlex(msh.EtoV, msh.Vertices), nil
}

// Local faces of a tetrahedron by vertex slot.
var tetFaces = [4][3]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {0, 2, 3}}

func buildTetPlex(etov [][]int, vertices [][]float64) *mesh.Mesh {
	nc := len(etov)
	nv := len(vertices)

	// Deduplicate faces by sorted vertex triple, assigning face ids in
	// first-seen traversal order so the numbering is deterministic.
	type triple [3]int
	faceID := make(map[triple]int)
	faceVerts := make([]triple, 0, 4*nc)
	cellFaces := make([][]int, nc)
	for k, verts := range etov {
		for _, lf := range tetFaces {
			t := triple{verts[lf[0]], verts[lf[1]], verts[lf[2]]}
			sort.Ints(t[:])
			id, ok := faceID[t]
			if !ok {
				id = len(faceVerts)
				faceID[t] = id
				faceVerts = append(faceVerts, t)
			}
			cellFaces[k] = append(cellFaces[k], id)
		}
	}
	nf := len(faceVerts)

	m := mesh.New(3, []int{nc, nf, nv})
	for k, faces := range cellFaces {
		cone := make([]int, len(faces))
		for i, f := range faces {
			cone[i] = nc + f
		}
		m.SetCone(k, cone)
	}
	for f, t := range faceVerts {
		m.SetCone(nc+f, []int{nc + nf + t[0], nc + nf + t[1], nc + nf + t[2]})
	}

	coords := make([]float64, 3*nv)
	for i, v := range vertices {
		coords[3*i] = v[0]
		coords[3*i+1] = v[1]
		coords[3*i+2] = v[2]
	}
	m.SetCoordinates(coords)
	return m
}

// BoundaryFaces returns the faces bounded by exactly one cell, in
// ascending point order.
func BoundaryFaces(m *mesh.Mesh) []int {
	fStart, fEnd := m.HeightStratum(1)
	var faces []int
	for f := fStart; f < fEnd; f++ {
		if len(m.Support(f)) == 1 {
			faces = append(faces, f)
		}
	}
	return faces
}
