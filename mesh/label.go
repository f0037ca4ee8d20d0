package mesh

import "sort"

// Label classifies mesh points with integer markers, used for filtering
// sub-meshes out of a parent mesh.
type Label struct {
	name   string
	values map[int]int
}

func newLabel(name string) *Label {
	return &Label{name: name, values: make(map[int]int)}
}

// Name returns the label's name.
func (l *Label) Name() string { return l.name }

// SetValue marks point p with value v.
func (l *Label) SetValue(p, v int) { l.values[p] = v }

// Value returns the marker of point p.
func (l *Label) Value(p int) (int, bool) {
	v, ok := l.values[p]
	return v, ok
}

// Size returns the number of points marked with value v.
func (l *Label) Size(v int) int {
	n := 0
	for _, val := range l.values {
		if val == v {
			n++
		}
	}
	return n
}

// Stratum returns the points marked with value v in ascending point
// order. The ordering is deterministic so derived meshes are
// reproducible across runs.
func (l *Label) Stratum(v int) []int {
	var pts []int
	for p, val := range l.values {
		if val == v {
			pts = append(pts, p)
		}
	}
	sort.Ints(pts)
	return pts
}

// Complete extends every marked point's value over its transitive
// downward closure in m, so that filtering by the label yields a
// topologically closed sub-mesh with no dangling cone references.
func (l *Label) Complete(m *Mesh) {
	marked := make(map[int]int, len(l.values))
	for p, v := range l.values {
		marked[p] = v
	}
	for p, v := range marked {
		l.completeClosure(m, p, v)
	}
}

func (l *Label) completeClosure(m *Mesh, p, v int) {
	for _, q := range m.Cone(p) {
		if _, ok := l.values[q]; !ok {
			l.values[q] = v
		}
		l.completeClosure(m, q, v)
	}
}
