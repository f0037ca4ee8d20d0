package monitors

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
	"github.com/notargets/fvmonitor/solver"
	"github.com/notargets/fvmonitor/viewer"
)

const boundaryFaceLabel = "boundaryFaceLabel"

// BoundarySolverMonitor outputs the boundary solver's computed
// quantities on a derived mesh holding only the boundary faces.
//
// Register clones the parent mesh into a boundary mesh, marks the
// boundary faces in a label, lays out one dof per output component on
// each marked face, and filters the label into an independent face
// sub-mesh that keeps a back-reference to the boundary mesh. Save
// recomputes the boundary quantities, remaps each face's block across
// the back-reference into a local buffer on the sub-mesh, and reduces
// duplicated contributions additively into a single global vector for
// the viewer.
type BoundarySolverMonitor struct {
	log  *zap.Logger
	name string

	sol            solver.Solver
	boundarySolver solver.BoundarySolver

	boundaryMesh *mesh.Mesh
	boundaryDisc *field.Discretization

	faceMesh *mesh.Mesh
	faceDisc *field.Discretization

	// faceToBoundary maps each face sub-mesh point to its boundary
	// mesh origin.
	faceToBoundary []int
}

// Option configures a BoundarySolverMonitor.
type Option func(*BoundarySolverMonitor)

// WithLogger installs a logger; the default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *BoundarySolverMonitor) { m.log = log }
}

// NewBoundarySolverMonitor creates an unregistered monitor.
func NewBoundarySolverMonitor(opts ...Option) *BoundarySolverMonitor {
	m := &BoundarySolverMonitor{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the monitor's output identifier, set at registration to
// the parent solver's id plus the monitor suffix.
func (m *BoundarySolverMonitor) Name() string { return m.name }

// BoundaryMesh returns the monitor-owned clone of the parent mesh.
func (m *BoundarySolverMonitor) BoundaryMesh() *mesh.Mesh { return m.boundaryMesh }

// FaceMesh returns the derived mesh of boundary faces.
func (m *BoundarySolverMonitor) FaceMesh() *mesh.Mesh { return m.faceMesh }

// FaceDiscretization returns the face sub-mesh's field layout.
func (m *BoundarySolverMonitor) FaceDiscretization() *field.Discretization { return m.faceDisc }

// Register attaches the monitor to a boundary solver, builds the
// boundary mesh's face classification and layout, extracts the face
// sub-mesh, and installs the output fields. Attaching any other solver
// type is a configuration error detected before any mesh is allocated.
func (m *BoundarySolverMonitor) Register(s solver.Solver) error {
	bs, ok := s.(solver.BoundarySolver)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrNotBoundarySolver, s)
	}
	m.sol = s
	m.boundarySolver = bs
	m.name = s.ID() + "_boundarySolverMonitor"

	sub := s.Subdomain()
	m.boundaryMesh = sub.Mesh.Clone()
	label := m.boundaryMesh.CreateLabel(boundaryFaceLabel)

	// Per-face layout over the full face range: zero everywhere, one
	// dof per output component on each marked face.
	fStart, fEnd := m.boundaryMesh.HeightStratum(1)
	section := mesh.NewSection(fStart, fEnd)

	numberOfComponents := len(bs.OutputComponents())
	seen := make(map[int]bool)
	for _, geom := range bs.BoundaryGeometry() {
		if geom.FaceID < fStart || geom.FaceID >= fEnd {
			return fmt.Errorf("%w: face %d not in [%d, %d)", ErrInvalidFace, geom.FaceID, fStart, fEnd)
		}
		if seen[geom.FaceID] {
			// Last assignment wins, as the layout overwrite below
			// implies; flag it for the domain owner.
			m.log.Warn("duplicate face id in boundary geometry",
				zap.Int("faceId", geom.FaceID),
				zap.String("monitor", m.name))
		}
		seen[geom.FaceID] = true

		label.SetValue(geom.FaceID, 1)
		if err := section.SetDof(geom.FaceID, numberOfComponents); err != nil {
			return err
		}
	}
	section.SetUp()

	m.boundaryDisc = field.NewDiscretization(m.boundaryMesh, sub.Comm)
	m.boundaryDisc.SetSection(section)
	if err := m.boundaryDisc.Setup(); err != nil {
		return fmt.Errorf("boundary layout: %w", err)
	}

	// Close the classification over adjacent strata so the filtered
	// sub-mesh has no dangling references.
	label.Complete(m.boundaryMesh)

	faceMesh, subpoints, err := m.boundaryMesh.Filter(label, 1)
	if err != nil {
		return fmt.Errorf("face sub-mesh extraction: %w", err)
	}
	m.faceMesh = faceMesh
	m.faceToBoundary = subpoints

	m.faceDisc = field.NewDiscretization(m.faceMesh, sub.Comm)
	for _, name := range bs.OutputComponents() {
		m.faceDisc.AddField(name)
	}
	if err := m.faceDisc.Setup(); err != nil {
		return fmt.Errorf("face sub-mesh layout: %w", err)
	}

	cStart, cEnd := m.faceMesh.HeightStratum(0)
	m.log.Debug("registered boundary solver monitor",
		zap.String("name", m.name),
		zap.Int("markedFaces", label.Size(1)),
		zap.Int("subMeshCells", cEnd-cStart),
		zap.Int("components", numberOfComponents))
	return nil
}

// Save writes one snapshot: the face sub-mesh topology on the first
// sequence, then the named, additively combined global face vector.
// Any collaborator or exchange failure aborts the snapshot with no
// partial write; transient buffers are released on every exit path.
func (m *BoundarySolverMonitor) Save(v viewer.Viewer, sequence int, time float64) error {
	if m.boundarySolver == nil {
		return fmt.Errorf("monitor %q is not registered", m.name)
	}

	// The first snapshot carries the topology record later snapshots
	// are interpreted against.
	if sequence == 0 {
		if err := v.ViewMesh(m.faceMesh); err != nil {
			return fmt.Errorf("topology record: %w", err)
		}
	}

	// Tag the stream before any field is written for this snapshot.
	if err := v.SetSequence(sequence, time); err != nil {
		return err
	}

	sub := m.sol.Subdomain()

	// Local (ghost-inclusive) view of the solution vector. The
	// begin/end pair would admit overlapped local work; none is done
	// here.
	locX := sub.Disc.LocalVector()
	defer sub.Disc.RestoreLocalVector(locX)
	if err := sub.Disc.GlobalToLocalBegin(sub.Solution, locX); err != nil {
		return fmt.Errorf("solution ghost update: %w", err)
	}

	locBoundary := m.boundaryDisc.LocalVector()
	defer m.boundaryDisc.RestoreLocalVector(locBoundary)
	locBoundary.Zero()

	if err := sub.Disc.GlobalToLocalEnd(sub.Solution, locX); err != nil {
		return fmt.Errorf("solution ghost update: %w", err)
	}

	if err := m.boundarySolver.ComputeRHS(time, locX, locBoundary, m.boundarySolver.OutputFunctions()); err != nil {
		return fmt.Errorf("boundary computation: %w", err)
	}

	locFace := m.faceDisc.LocalVector()
	defer m.faceDisc.RestoreLocalVector(locFace)
	locFace.Zero()

	dataSize := m.faceDisc.BlockSize()

	// Copy each sub-mesh cell's block from the boundary result. Points
	// without a read or write location are local ghost gaps; they are
	// skipped and resolved by the additive reduction below.
	cStart, cEnd := m.faceMesh.HeightStratum(0)
	for facePt := cStart; facePt < cEnd; facePt++ {
		boundaryPt := m.faceToBoundary[facePt]

		roff, rdof, ok := m.boundaryDisc.PointOffset(boundaryPt)
		if !ok {
			continue
		}
		woff, wdof, ok := m.faceDisc.PointOffset(facePt)
		if !ok {
			continue
		}
		n := dataSize
		if rdof < n {
			n = rdof
		}
		if wdof < n {
			n = wdof
		}
		copy(locFace.Data[woff:woff+n], locBoundary.Data[roff:roff+n])
	}

	gFace := m.faceDisc.GlobalVector()
	defer m.faceDisc.RestoreGlobalVector(gFace)
	gFace.Name = m.name
	gFace.Zero()
	if err := m.faceDisc.LocalToGlobal(locFace, field.AddValues, gFace); err != nil {
		return fmt.Errorf("face reduction: %w", err)
	}

	if err := v.ViewVec(gFace); err != nil {
		return fmt.Errorf("write %q: %w", m.name, err)
	}
	return nil
}

// Destroy releases the monitor-owned boundary and face meshes. Safe to
// call more than once.
func (m *BoundarySolverMonitor) Destroy() {
	m.boundaryMesh = nil
	m.boundaryDisc = nil
	m.faceMesh = nil
	m.faceDisc = nil
	m.faceToBoundary = nil
	m.boundarySolver = nil
	m.sol = nil
}
