package viewer

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/notargets/fvmonitor/field"
	"github.com/notargets/fvmonitor/mesh"
)

const (
	recordTopology = iota
	recordField
)

// Record is one entry in a gob output stream.
type Record struct {
	Kind     int
	Sequence int
	Time     float64
	Name     string
	Data     []float64
	Topology *Topology
}

// GobViewer streams monitor output to a file as a sequence of gob
// records: one topology record followed by one field record per saved
// snapshot.
type GobViewer struct {
	f        *os.File
	enc      *gob.Encoder
	sequence int
	time     float64
}

// NewGobViewer creates (truncating) the output file.
func NewGobViewer(path string) (*GobViewer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return &GobViewer{f: f, enc: gob.NewEncoder(f)}, nil
}

func (v *GobViewer) ViewMesh(m *mesh.Mesh) error {
	t := TopologyOf(m)
	return v.enc.Encode(Record{Kind: recordTopology, Topology: &t})
}

func (v *GobViewer) SetSequence(sequence int, time float64) error {
	v.sequence = sequence
	v.time = time
	return nil
}

func (v *GobViewer) ViewVec(vec *field.Vec) error {
	return v.enc.Encode(Record{
		Kind:     recordField,
		Sequence: v.sequence,
		Time:     v.time,
		Name:     vec.Name,
		Data:     vec.Data,
	})
}

// Close flushes and closes the file.
func (v *GobViewer) Close() error { return v.f.Close() }

// ReadRecords loads every record from a gob output file, the read-side
// counterpart used by tests and post-processing.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	var records []Record
	for {
		var r Record
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, err
		}
		records = append(records, r)
	}
}
