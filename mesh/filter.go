package mesh

import (
	"fmt"
	"sort"
)

// Filter extracts the sub-mesh of points marked with value in the
// label. The shallowest selected stratum becomes the sub-mesh's cell
// stratum (height 0), so filtering a completed face label on a volume
// mesh yields a mesh whose cells are the marked faces.
//
// The returned slice maps every sub-mesh point back to its originating
// point in the receiver; its cell-stratum prefix is the back-reference
// used to remap face data. Sub-mesh points are ordered by ascending
// parent point within each stratum, which makes repeated extraction
// deterministic.
//
// For distributed meshes the sub-mesh inherits point ownership; the
// Remote index of a ghost sub-point stays in the owner's parent
// numbering and is translated by the owner at layout-setup time via
// SubpointOf.
//
// An empty selection is legitimate and produces an empty mesh.
func (m *Mesh) Filter(label *Label, value int) (*Mesh, []int, error) {
	if label == nil {
		return nil, nil, fmt.Errorf("filter requires a label")
	}
	selected := label.Stratum(value)
	if len(selected) == 0 {
		sub := New(m.dim, nil)
		sub.Rank = m.Rank
		sub.subpoint = []int{}
		sub.parentToSub = map[int]int{}
		return sub, sub.subpoint, nil
	}

	// Group selected points by parent height.
	byHeight := make(map[int][]int)
	minH, maxH := -1, -1
	for _, p := range selected {
		h := m.Height(p)
		if h < 0 {
			return nil, nil, fmt.Errorf("labeled point %d outside mesh chart", p)
		}
		byHeight[h] = append(byHeight[h], p)
		if minH < 0 || h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}

	counts := make([]int, maxH-minH+1)
	for h, pts := range byHeight {
		sort.Ints(pts)
		counts[h-minH] = len(pts)
	}

	sub := New(m.dim, counts)
	sub.Rank = m.Rank
	sub.subpoint = make([]int, 0, len(selected))
	sub.parentToSub = make(map[int]int, len(selected))
	for h := minH; h <= maxH; h++ {
		for _, p := range byHeight[h] {
			sub.parentToSub[p] = len(sub.subpoint)
			sub.subpoint = append(sub.subpoint, p)
		}
	}

	// Remap cones, keeping only selected members. With a completed
	// label the whole closure is selected and nothing is dropped.
	for sp, p := range sub.subpoint {
		var cone []int
		for _, q := range m.Cone(p) {
			if sq, ok := sub.parentToSub[q]; ok {
				cone = append(cone, sq)
			}
		}
		if err := sub.SetCone(sp, cone); err != nil {
			return nil, nil, err
		}
	}

	// Copy coordinates for sub-mesh vertices that are parent vertices.
	vStart, vEnd := sub.vertexRange()
	if vEnd > vStart && m.coords != nil {
		coords := make([]float64, (vEnd-vStart)*m.dim)
		for sp := vStart; sp < vEnd; sp++ {
			if c := m.VertexCoords(sub.subpoint[sp]); c != nil {
				copy(coords[(sp-vStart)*m.dim:], c)
			}
		}
		if err := sub.SetCoordinates(coords); err != nil {
			return nil, nil, err
		}
	}

	// Inherit ownership.
	if m.sharing != nil {
		sub.sharing = make([]PointSharing, len(sub.subpoint))
		for sp, p := range sub.subpoint {
			sub.sharing[sp] = m.sharing[p]
		}
	}

	return sub, sub.subpoint, nil
}
