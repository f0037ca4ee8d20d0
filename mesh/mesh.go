// Package mesh provides the distributed plex-style mesh used by the
// finite-volume monitors: integer points grouped into height strata
// (cells, faces, vertices), downward adjacency, per-point ownership for
// distributed meshes, and the label/section/filter machinery used to
// derive sub-meshes.
package mesh

import (
	"fmt"
)

// Stratum is a contiguous range of points sharing a topological height.
// Height 0 holds the cells, height 1 the faces (co-dimension 1), and the
// deepest stratum the vertices.
type Stratum struct {
	Height int
	Start  int
	End    int
}

// PointSharing records the distributed identity of a local point.
// Owner is the rank that owns the point; Remote is the point's index in
// the owner's local numbering. A point with Owner == local rank is owned.
type PointSharing struct {
	Owner  int
	Remote int
}

// Mesh is a rank-local view of a distributed mesh.
type Mesh struct {
	// Rank is this process's rank in the mesh's communicator group.
	Rank int

	dim    int
	strata []Stratum
	cones  [][]int

	// coords holds dim values per vertex, in vertex-stratum order.
	// Shared between a mesh and its clones.
	coords []float64

	// sharing is nil when every point is owned by this rank.
	sharing []PointSharing

	labels map[string]*Label

	// subpoint maps sub-mesh points back to their originating parent
	// points. Nil unless this mesh was produced by Filter.
	subpoint    []int
	parentToSub map[int]int

	support [][]int // lazily built upward adjacency
}

// New creates a mesh with counts[h] points at height h. Points are
// numbered contiguously by stratum: height 0 first, then height 1, and
// so on.
func New(dim int, counts []int) *Mesh {
	m := &Mesh{
		dim:    dim,
		labels: make(map[string]*Label),
	}
	start := 0
	for h, n := range counts {
		m.strata = append(m.strata, Stratum{Height: h, Start: start, End: start + n})
		start += n
	}
	m.cones = make([][]int, start)
	return m
}

// Dim returns the coordinate dimension.
func (m *Mesh) Dim() int { return m.dim }

// Chart returns the half-open range of point indices.
func (m *Mesh) Chart() (int, int) {
	if len(m.strata) == 0 {
		return 0, 0
	}
	return m.strata[0].Start, m.strata[len(m.strata)-1].End
}

// NumPoints returns the total number of local points.
func (m *Mesh) NumPoints() int {
	_, end := m.Chart()
	return end
}

// Strata returns the stratum table in height order.
func (m *Mesh) Strata() []Stratum { return m.strata }

// HeightStratum returns the point range [start, end) at the given
// height. A missing stratum yields an empty range, so iteration over an
// empty mesh is a no-op rather than an error.
func (m *Mesh) HeightStratum(height int) (int, int) {
	for _, s := range m.strata {
		if s.Height == height {
			return s.Start, s.End
		}
	}
	return 0, 0
}

// Height returns the topological height of point p, or -1 if p is
// outside the chart.
func (m *Mesh) Height(p int) int {
	for _, s := range m.strata {
		if p >= s.Start && p < s.End {
			return s.Height
		}
	}
	return -1
}

// SetCone assigns the downward adjacency of point p: the faces of a
// cell, the vertices of a face.
func (m *Mesh) SetCone(p int, cone []int) error {
	if p < 0 || p >= len(m.cones) {
		return fmt.Errorf("point %d outside chart [0, %d)", p, len(m.cones))
	}
	m.cones[p] = append([]int(nil), cone...)
	m.support = nil
	return nil
}

// Cone returns the downward adjacency of point p.
func (m *Mesh) Cone(p int) []int {
	if p < 0 || p >= len(m.cones) {
		return nil
	}
	return m.cones[p]
}

// Support returns the upward adjacency of point p (for a face, the
// cells it bounds). Built lazily from the cones and cached.
func (m *Mesh) Support(p int) []int {
	if m.support == nil {
		m.support = make([][]int, len(m.cones))
		for q, cone := range m.cones {
			for _, c := range cone {
				if c >= 0 && c < len(m.support) {
					m.support[c] = append(m.support[c], q)
				}
			}
		}
	}
	if p < 0 || p >= len(m.support) {
		return nil
	}
	return m.support[p]
}

// SetCoordinates assigns vertex coordinates, dim values per vertex in
// vertex-stratum order.
func (m *Mesh) SetCoordinates(coords []float64) error {
	vStart, vEnd := m.vertexRange()
	if want := (vEnd - vStart) * m.dim; len(coords) != want {
		return fmt.Errorf("coordinate length %d does not match %d vertices in %dD", len(coords), vEnd-vStart, m.dim)
	}
	m.coords = coords
	return nil
}

// Coordinates returns the vertex coordinate array shared by this mesh
// and its clones.
func (m *Mesh) Coordinates() []float64 { return m.coords }

// VertexCoords returns the coordinates of vertex point p.
func (m *Mesh) VertexCoords(p int) []float64 {
	vStart, vEnd := m.vertexRange()
	if p < vStart || p >= vEnd || m.coords == nil {
		return nil
	}
	i := (p - vStart) * m.dim
	return m.coords[i : i+m.dim]
}

func (m *Mesh) vertexRange() (int, int) {
	if len(m.strata) == 0 {
		return 0, 0
	}
	s := m.strata[len(m.strata)-1]
	return s.Start, s.End
}

// SetGhost marks local point p as a ghost copy of point remote on rank
// owner.
func (m *Mesh) SetGhost(p, owner, remote int) error {
	if p < 0 || p >= m.NumPoints() {
		return fmt.Errorf("point %d outside chart [0, %d)", p, m.NumPoints())
	}
	if m.sharing == nil {
		m.sharing = make([]PointSharing, m.NumPoints())
		for q := range m.sharing {
			m.sharing[q] = PointSharing{Owner: m.Rank, Remote: q}
		}
	}
	m.sharing[p] = PointSharing{Owner: owner, Remote: remote}
	return nil
}

// Owned reports whether point p is owned by this rank.
func (m *Mesh) Owned(p int) bool {
	if m.sharing == nil {
		return true
	}
	return m.sharing[p].Owner == m.Rank
}

// Ghost returns the owner rank and remote index of point p if p is a
// ghost copy.
func (m *Mesh) Ghost(p int) (owner, remote int, ok bool) {
	if m.sharing == nil || m.sharing[p].Owner == m.Rank {
		return 0, 0, false
	}
	return m.sharing[p].Owner, m.sharing[p].Remote, true
}

// Clone creates a structural copy sharing topology and coordinates with
// the receiver. Labels are not carried over: the clone starts with an
// empty label table so a derived classification does not leak back into
// the source mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Rank:        m.Rank,
		dim:         m.dim,
		strata:      m.strata,
		cones:       m.cones,
		coords:      m.coords,
		sharing:     m.sharing,
		labels:      make(map[string]*Label),
		subpoint:    m.subpoint,
		parentToSub: m.parentToSub,
	}
	return c
}

// CreateLabel creates (or resets) a named label on the mesh.
func (m *Mesh) CreateLabel(name string) *Label {
	l := newLabel(name)
	m.labels[name] = l
	return l
}

// GetLabel returns the named label, or nil.
func (m *Mesh) GetLabel(name string) *Label { return m.labels[name] }

// SubpointMap returns the sub-to-parent point mapping for a filtered
// mesh, or nil for an ordinary mesh.
func (m *Mesh) SubpointMap() []int { return m.subpoint }

// SubpointOf translates a parent point index into this filtered mesh's
// numbering.
func (m *Mesh) SubpointOf(parent int) (int, bool) {
	sp, ok := m.parentToSub[parent]
	return sp, ok
}
