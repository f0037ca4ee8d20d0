package comm

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// messageCap bounds the number of posted-but-unreceived messages per
// rank pair. The exchange protocols post at most a handful of messages
// per phase, so hitting the cap indicates a protocol error rather than
// a large mesh.
const messageCap = 1024

type message struct {
	tag    int
	floats []float64
	ints   []int
}

// Group is one rank's handle on an in-process communicator group. All
// handles share a core; each handle must be used by a single goroutine,
// matching the one-logical-thread-per-rank model.
type Group struct {
	rank      int
	reduceSeq int
	core      *groupCore
}

type groupCore struct {
	size  int
	chans [][]chan message // chans[src][dst]

	mu     sync.Mutex
	cond   *sync.Cond
	rounds map[int]*reduceRound
}

type reduceRound struct {
	acc         []float64
	width       int
	contributed int
	done        bool
	readers     int
	failed      error
}

// NewGroup creates an in-process communicator group of the given size
// and returns one handle per rank.
func NewGroup(size int) ([]*Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("group size %d must be positive", size)
	}
	core := &groupCore{
		size:   size,
		chans:  make([][]chan message, size),
		rounds: make(map[int]*reduceRound),
	}
	core.cond = sync.NewCond(&core.mu)
	for src := 0; src < size; src++ {
		core.chans[src] = make([]chan message, size)
		for dst := 0; dst < size; dst++ {
			core.chans[src][dst] = make(chan message, messageCap)
		}
	}
	groups := make([]*Group, size)
	for r := 0; r < size; r++ {
		groups[r] = &Group{rank: r, core: core}
	}
	return groups, nil
}

// RunGroup runs fn once per rank of a fresh group, one goroutine per
// rank, and returns the first error any rank produced. It is the test
// and driver harness for multi-rank scenarios.
func RunGroup(size int, fn func(g *Group) error) error {
	groups, err := NewGroup(size)
	if err != nil {
		return err
	}
	var eg errgroup.Group
	for _, g := range groups {
		eg.Go(func() error {
			if err := fn(g); err != nil {
				return fmt.Errorf("rank %d: %w", g.rank, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (g *Group) Rank() int { return g.rank }
func (g *Group) Size() int { return g.core.size }

func (g *Group) post(to int, msg message) error {
	if to < 0 || to >= g.core.size || to == g.rank {
		return fmt.Errorf("invalid destination rank %d", to)
	}
	select {
	case g.core.chans[g.rank][to] <- msg:
		return nil
	default:
		return fmt.Errorf("message backlog to rank %d exceeds %d", to, messageCap)
	}
}

func (g *Group) take(from, tag int) (message, error) {
	if from < 0 || from >= g.core.size || from == g.rank {
		return message{}, fmt.Errorf("invalid source rank %d", from)
	}
	msg := <-g.core.chans[from][g.rank]
	if msg.tag != tag {
		return message{}, fmt.Errorf("out-of-order exchange: expected tag %d from rank %d, got %d", tag, from, msg.tag)
	}
	return msg, nil
}

// Send posts a float message; the data is copied so the caller may
// reuse its buffer immediately.
func (g *Group) Send(to, tag int, data []float64) error {
	return g.post(to, message{tag: tag, floats: append([]float64(nil), data...)})
}

// Recv blocks until the next message from the given rank arrives and
// checks it carries the expected tag.
func (g *Group) Recv(from, tag int) ([]float64, error) {
	msg, err := g.take(from, tag)
	if err != nil {
		return nil, err
	}
	return msg.floats, nil
}

func (g *Group) SendInts(to, tag int, data []int) error {
	return g.post(to, message{tag: tag, ints: append([]int(nil), data...)})
}

func (g *Group) RecvInts(from, tag int) ([]int, error) {
	msg, err := g.take(from, tag)
	if err != nil {
		return nil, err
	}
	return msg.ints, nil
}

// AllReduceSum sums the per-rank contributions elementwise and returns
// the combined result on every rank. Collective: ranks are matched by
// call order, so mismatched orderings across ranks either fail on a
// width mismatch or deadlock, never silently combine the wrong rounds.
func (g *Group) AllReduceSum(vals []float64) ([]float64, error) {
	core := g.core
	id := g.reduceSeq
	g.reduceSeq++

	core.mu.Lock()
	defer core.mu.Unlock()

	r, ok := core.rounds[id]
	if !ok {
		r = &reduceRound{width: len(vals), acc: make([]float64, len(vals))}
		core.rounds[id] = r
	}
	if r.failed == nil && len(vals) != r.width {
		r.failed = fmt.Errorf("collective mismatch: reduction %d called with width %d and %d", id, r.width, len(vals))
	}
	if r.failed == nil && len(vals) > 0 {
		floats.Add(r.acc, vals)
	}
	r.contributed++
	if r.contributed == core.size {
		r.done = true
		core.cond.Broadcast()
	}
	for !r.done {
		core.cond.Wait()
	}

	var out []float64
	err := r.failed
	if err == nil {
		out = append([]float64(nil), r.acc...)
	}
	r.readers++
	if r.readers == core.size {
		delete(core.rounds, id)
	}
	return out, err
}

// Barrier blocks until every rank reaches it.
func (g *Group) Barrier() error {
	_, err := g.AllReduceSum(nil)
	return err
}
