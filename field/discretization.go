package field

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/fvmonitor/comm"
	"github.com/notargets/fvmonitor/mesh"
)

// InsertMode selects how LocalToGlobal combines local contributions
// into the global vector.
type InsertMode int

const (
	// InsertValues overwrites the global entry with the local value.
	InsertValues InsertMode = iota
	// AddValues sums contributions, the mode used to combine
	// duplicated face dofs across ranks.
	AddValues
)

// Message tags for the exchange phases. Every rank drives the same
// phases in the same order, so tags double as an ordering check.
const (
	tagSetup = iota + 1
	tagGlobalToLocal
	tagLocalToGlobal
)

// FieldSpec describes one named scalar field installed on a mesh.
type FieldSpec struct {
	Name       string
	Components int
	Dim        int
}

// Discretization ties a mesh, a dof section, and a communicator into a
// data layout: it allocates local (ghost-inclusive) and global
// (owned-only) vectors and moves data between them.
//
// The section may be supplied explicitly (the boundary-face layout) or
// derived from installed fields at Setup time (one dof per field on
// every cell-stratum point, the face sub-mesh case).
type Discretization struct {
	Mesh *mesh.Mesh
	Comm comm.Comm

	fields  []FieldSpec
	section *mesh.Section

	block      int
	globalSize int
	globalOff  []int // per point, -1 when not owned or no dofs

	// Ghost exchange plans, built collectively at Setup.
	owners   []int         // ranks owning our ghost points, ascending
	ghostPts map[int][]int // our ghost points per owner rank
	holders  []int         // ranks ghosting our points, ascending
	heldPts  map[int][]int // our owned points per holder, in request order

	localPool  []*Vec
	globalPool []*Vec

	ready bool
}

// NewDiscretization creates an empty discretization over the mesh.
func NewDiscretization(m *mesh.Mesh, c comm.Comm) *Discretization {
	return &Discretization{Mesh: m, Comm: c}
}

// AddField installs a named single-component scalar field, dimensioned
// to the mesh's coordinate dimension.
func (d *Discretization) AddField(name string) {
	d.fields = append(d.fields, FieldSpec{Name: name, Components: 1, Dim: d.Mesh.Dim()})
	d.ready = false
}

// Fields returns the installed field specs.
func (d *Discretization) Fields() []FieldSpec { return d.fields }

// SetSection supplies an explicit dof layout. The section must be set
// up by the caller.
func (d *Discretization) SetSection(s *mesh.Section) {
	d.section = s
	d.ready = false
}

// Section returns the dof layout.
func (d *Discretization) Section() *mesh.Section { return d.section }

// Setup finalizes the layout and builds the ghost exchange plans.
// Collective: every rank of the communicator must call Setup on its
// local piece in the same relative order as its peers.
func (d *Discretization) Setup() error {
	if d.section == nil {
		if len(d.fields) == 0 {
			return fmt.Errorf("discretization needs fields or an explicit section")
		}
		cStart, cEnd := d.Mesh.HeightStratum(0)
		sec := mesh.NewSection(cStart, cEnd)
		for c := cStart; c < cEnd; c++ {
			if err := sec.SetDof(c, len(d.fields)); err != nil {
				return err
			}
		}
		sec.SetUp()
		d.section = sec
	}

	d.block = d.uniformBlock()

	// Global layout: owned points only, ascending point order.
	start, end := d.Mesh.Chart()
	d.globalOff = make([]int, end)
	for p := range d.globalOff {
		d.globalOff[p] = -1
	}
	d.globalSize = 0
	for p := start; p < end; p++ {
		if !d.Mesh.Owned(p) {
			continue
		}
		if _, dof, ok := d.section.Offset(p); ok {
			d.globalOff[p] = d.globalSize
			d.globalSize += dof
		}
	}

	if err := d.buildExchange(); err != nil {
		return err
	}

	d.localPool = nil
	d.globalPool = nil
	d.ready = true
	return nil
}

// uniformBlock returns the common nonzero dof count, falling back to
// the field count (then 1) when the layout has no populated points.
func (d *Discretization) uniformBlock() int {
	block := 0
	start, end := d.Mesh.Chart()
	for p := start; p < end; p++ {
		dof := d.section.Dof(p)
		if dof == 0 {
			continue
		}
		if block == 0 {
			block = dof
		} else if block != dof {
			return 1
		}
	}
	if block == 0 {
		block = len(d.fields)
	}
	if block == 0 {
		block = 1
	}
	return block
}

// buildExchange agrees the ghost traffic with every peer rank. Each
// rank tells each owner which of the owner's points it ghosts (in the
// owner's numbering); owners translate filtered-mesh indices through
// their own subpoint map and record the request order for later packed
// transfers.
func (d *Discretization) buildExchange() error {
	d.ghostPts = make(map[int][]int)
	d.heldPts = make(map[int][]int)
	d.owners = nil
	d.holders = nil

	size := d.Comm.Size()
	if size == 1 {
		return nil
	}
	rank := d.Comm.Rank()

	remoteByOwner := make(map[int][]int)
	start, end := d.Mesh.Chart()
	for p := start; p < end; p++ {
		owner, remote, ok := d.Mesh.Ghost(p)
		if !ok {
			continue
		}
		if _, _, has := d.section.Offset(p); !has {
			continue
		}
		d.ghostPts[owner] = append(d.ghostPts[owner], p)
		remoteByOwner[owner] = append(remoteByOwner[owner], remote)
	}
	for owner := range d.ghostPts {
		d.owners = append(d.owners, owner)
	}
	sort.Ints(d.owners)

	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		if err := d.Comm.SendInts(r, tagSetup, remoteByOwner[r]); err != nil {
			return err
		}
	}
	for r := 0; r < size; r++ {
		if r == rank {
			continue
		}
		req, err := d.Comm.RecvInts(r, tagSetup)
		if err != nil {
			return err
		}
		if len(req) == 0 {
			continue
		}
		pts := make([]int, len(req))
		for i, p := range req {
			if d.Mesh.SubpointMap() != nil {
				sp, ok := d.Mesh.SubpointOf(p)
				if !ok {
					return fmt.Errorf("rank %d requested parent point %d absent from sub-mesh", r, p)
				}
				p = sp
			}
			if !d.Mesh.Owned(p) {
				return fmt.Errorf("rank %d requested point %d not owned here", r, p)
			}
			pts[i] = p
		}
		d.heldPts[r] = pts
		d.holders = append(d.holders, r)
	}
	sort.Ints(d.holders)
	return nil
}

// BlockSize returns the per-point block size of vectors on this layout.
func (d *Discretization) BlockSize() int { return d.block }

// LocalSize returns the length of a local (ghost-inclusive) vector.
func (d *Discretization) LocalSize() int { return d.section.Size() }

// GlobalSize returns the length of this rank's global vector segment.
func (d *Discretization) GlobalSize() int { return d.globalSize }

// PointOffset resolves point p in the local layout.
func (d *Discretization) PointOffset(p int) (off, dof int, ok bool) {
	if d.section == nil {
		return 0, 0, false
	}
	return d.section.Offset(p)
}

// GlobalPointOffset resolves point p in the global layout; ghost points
// have no global location on this rank.
func (d *Discretization) GlobalPointOffset(p int) (off, dof int, ok bool) {
	if !d.ready || p < 0 || p >= len(d.globalOff) || d.globalOff[p] < 0 {
		return 0, 0, false
	}
	return d.globalOff[p], d.section.Dof(p), true
}

// LocalVector returns a zero-initialized-on-first-use local vector from
// the pool. Pair with RestoreLocalVector, typically via defer, so the
// buffer is released on every exit path.
func (d *Discretization) LocalVector() *Vec {
	return d.fromPool(&d.localPool, d.LocalSize())
}

// RestoreLocalVector returns a local vector to the pool.
func (d *Discretization) RestoreLocalVector(v *Vec) {
	if v != nil {
		d.localPool = append(d.localPool, v)
	}
}

// GlobalVector returns a global (owned-dof) vector from the pool.
func (d *Discretization) GlobalVector() *Vec {
	return d.fromPool(&d.globalPool, d.globalSize)
}

// RestoreGlobalVector returns a global vector to the pool.
func (d *Discretization) RestoreGlobalVector(v *Vec) {
	if v != nil {
		d.globalPool = append(d.globalPool, v)
	}
}

func (d *Discretization) fromPool(pool *[]*Vec, size int) *Vec {
	if n := len(*pool); n > 0 {
		v := (*pool)[n-1]
		*pool = (*pool)[:n-1]
		v.Name = ""
		v.Block = d.block
		return v
	}
	return &Vec{Data: make([]float64, size), Block: d.block, disc: d}
}

// GlobalToLocalBegin starts a ghost update: owned blocks are copied
// into the local vector and the owner-side sends are posted. Local work
// may run between Begin and End; the pair is non-blocking in the sends.
func (d *Discretization) GlobalToLocalBegin(g, l *Vec) error {
	if !d.ready {
		return fmt.Errorf("discretization not set up")
	}
	start, end := d.Mesh.Chart()
	for p := start; p < end; p++ {
		goff := -1
		if p < len(d.globalOff) {
			goff = d.globalOff[p]
		}
		if goff < 0 {
			continue
		}
		loff, dof, ok := d.section.Offset(p)
		if !ok {
			continue
		}
		copy(l.Data[loff:loff+dof], g.Data[goff:goff+dof])
	}
	for _, r := range d.holders {
		buf, err := d.pack(g.Data, d.heldPts[r], d.globalOff)
		if err != nil {
			return err
		}
		if err := d.Comm.Send(r, tagGlobalToLocal, buf); err != nil {
			return err
		}
	}
	return nil
}

// GlobalToLocalEnd completes the ghost update, unpacking each owner's
// message into this rank's ghost slots.
func (d *Discretization) GlobalToLocalEnd(g, l *Vec) error {
	if !d.ready {
		return fmt.Errorf("discretization not set up")
	}
	for _, r := range d.owners {
		buf, err := d.Comm.Recv(r, tagGlobalToLocal)
		if err != nil {
			return err
		}
		at := 0
		for _, p := range d.ghostPts[r] {
			loff, dof, ok := d.section.Offset(p)
			if !ok {
				continue
			}
			if at+dof > len(buf) {
				return fmt.Errorf("short ghost message from rank %d: need %d values, have %d", r, at+dof, len(buf))
			}
			copy(l.Data[loff:loff+dof], buf[at:at+dof])
			at += dof
		}
	}
	return nil
}

// LocalToGlobal reduces a local vector into the global vector. With
// AddValues, ghost contributions are summed onto the owner's entry, so
// a face duplicated across ranks ends up with a single combined value.
func (d *Discretization) LocalToGlobal(l *Vec, mode InsertMode, g *Vec) error {
	if !d.ready {
		return fmt.Errorf("discretization not set up")
	}
	// Post ghost contributions to their owners first.
	for _, r := range d.owners {
		buf := make([]float64, 0)
		for _, p := range d.ghostPts[r] {
			loff, dof, ok := d.section.Offset(p)
			if !ok {
				continue
			}
			buf = append(buf, l.Data[loff:loff+dof]...)
		}
		if err := d.Comm.Send(r, tagLocalToGlobal, buf); err != nil {
			return err
		}
	}

	// Combine this rank's owned contributions.
	start, end := d.Mesh.Chart()
	for p := start; p < end; p++ {
		goff := d.globalOff[p]
		if goff < 0 {
			continue
		}
		loff, dof, ok := d.section.Offset(p)
		if !ok {
			continue
		}
		d.combine(g.Data[goff:goff+dof], l.Data[loff:loff+dof], mode)
	}

	// Fold in what the ghosting ranks sent.
	for _, r := range d.holders {
		buf, err := d.Comm.Recv(r, tagLocalToGlobal)
		if err != nil {
			return err
		}
		at := 0
		for _, p := range d.heldPts[r] {
			goff := d.globalOff[p]
			dof := d.section.Dof(p)
			if goff < 0 || dof == 0 {
				continue
			}
			if at+dof > len(buf) {
				return fmt.Errorf("short reduction message from rank %d: need %d values, have %d", r, at+dof, len(buf))
			}
			d.combine(g.Data[goff:goff+dof], buf[at:at+dof], mode)
			at += dof
		}
	}
	return nil
}

func (d *Discretization) combine(dst, src []float64, mode InsertMode) {
	if mode == AddValues {
		floats.Add(dst, src)
		return
	}
	copy(dst, src)
}

func (d *Discretization) pack(data []float64, pts, offsets []int) ([]float64, error) {
	buf := make([]float64, 0, len(pts)*d.block)
	for _, p := range pts {
		off := -1
		if p < len(offsets) {
			off = offsets[p]
		}
		dof := d.section.Dof(p)
		if off < 0 || dof == 0 {
			return nil, fmt.Errorf("point %d has no packed location", p)
		}
		buf = append(buf, data[off:off+dof]...)
	}
	return buf, nil
}
