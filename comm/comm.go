// Package comm provides the collective communication model the monitor
// subsystem runs on: one logical thread of control per rank, pairwise
// messages for ghost exchange, and collective reductions that every
// rank must enter in the same order. A stalled collective blocks
// forever; there are no timeouts and no per-rank recovery.
package comm

import "fmt"

// Comm is the communicator consumed by the field-transfer machinery.
// Point-to-point sends are posted without blocking; receives block
// until the matching message arrives. AllReduceSum and Barrier are
// collective: all ranks must call them in the same order or the group
// deadlocks.
type Comm interface {
	Rank() int
	Size() int

	Send(to, tag int, data []float64) error
	Recv(from, tag int) ([]float64, error)
	SendInts(to, tag int, data []int) error
	RecvInts(from, tag int) ([]int, error)

	AllReduceSum(vals []float64) ([]float64, error)
	Barrier() error
}

// Self is the single-rank communicator. Point-to-point messaging is an
// error (a rank never messages itself); collectives are local no-ops.
type Self struct{}

func (Self) Rank() int { return 0 }
func (Self) Size() int { return 1 }

func (Self) Send(to, tag int, data []float64) error {
	return fmt.Errorf("self communicator: no rank %d to send to", to)
}

func (Self) Recv(from, tag int) ([]float64, error) {
	return nil, fmt.Errorf("self communicator: no rank %d to receive from", from)
}

func (Self) SendInts(to, tag int, data []int) error {
	return fmt.Errorf("self communicator: no rank %d to send to", to)
}

func (Self) RecvInts(from, tag int) ([]int, error) {
	return nil, fmt.Errorf("self communicator: no rank %d to receive from", from)
}

func (Self) AllReduceSum(vals []float64) ([]float64, error) {
	out := make([]float64, len(vals))
	copy(out, vals)
	return out, nil
}

func (Self) Barrier() error { return nil }
