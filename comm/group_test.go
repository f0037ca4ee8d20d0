package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSelfCollectives(t *testing.T) {
	c := Self{}
	require.Equal(t, 0, c.Rank())
	require.Equal(t, 1, c.Size())

	out, err := c.AllReduceSum([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out)

	require.NoError(t, c.Barrier())

	_, err = c.Recv(0, 1)
	assert.Error(t, err, "self communicator must reject point-to-point")
}

func TestGroupAllReduceSum(t *testing.T) {
	err := RunGroup(3, func(g *Group) error {
		vals := []float64{float64(g.Rank()), 1}
		out, err := g.AllReduceSum(vals)
		if err != nil {
			return err
		}
		// 0+1+2 = 3 contributions, 3 ranks
		assert.Equal(t, []float64{3, 3}, out)
		return nil
	})
	require.NoError(t, err)
}

func TestGroupRepeatedCollectives(t *testing.T) {
	err := RunGroup(2, func(g *Group) error {
		for round := 0; round < 50; round++ {
			out, err := g.AllReduceSum([]float64{1})
			if err != nil {
				return err
			}
			if out[0] != 2 {
				t.Errorf("round %d: sum %v, expected 2", round, out[0])
			}
		}
		return g.Barrier()
	})
	require.NoError(t, err)
}

func TestGroupSendRecv(t *testing.T) {
	err := RunGroup(2, func(g *Group) error {
		const tag = 7
		if g.Rank() == 0 {
			if err := g.Send(1, tag, []float64{1.5, 2.5}); err != nil {
				return err
			}
			// The payload is copied on Send; mutating afterwards is safe
			return nil
		}
		got, err := g.Recv(0, tag)
		if err != nil {
			return err
		}
		assert.Equal(t, []float64{1.5, 2.5}, got)
		return nil
	})
	require.NoError(t, err)
}

func TestGroupTagMismatchIsError(t *testing.T) {
	err := RunGroup(2, func(g *Group) error {
		if g.Rank() == 0 {
			return g.Send(1, 1, []float64{1})
		}
		_, err := g.Recv(0, 2)
		assert.Error(t, err, "mismatched tag must surface an ordering error")
		return nil
	})
	require.NoError(t, err)
}

func TestGroupWidthMismatchIsError(t *testing.T) {
	err := RunGroup(2, func(g *Group) error {
		var vals []float64
		if g.Rank() == 0 {
			vals = []float64{1, 2}
		} else {
			vals = []float64{1}
		}
		_, err := g.AllReduceSum(vals)
		assert.Error(t, err, "collective width mismatch must fail on every rank")
		return nil
	})
	require.NoError(t, err)
}

func TestGroupIntMessages(t *testing.T) {
	err := RunGroup(2, func(g *Group) error {
		const tag = 3
		other := 1 - g.Rank()
		if err := g.SendInts(other, tag, []int{10, 20, g.Rank()}); err != nil {
			return err
		}
		got, err := g.RecvInts(other, tag)
		if err != nil {
			return err
		}
		assert.Equal(t, []int{10, 20, other}, got)
		return nil
	})
	require.NoError(t, err)
}
