package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudice/internal/ir"
	"sudice/internal/interp"
	"sudice/internal/rng"
)

func dice(count, face int64) []ir.Inst {
	return []ir.Inst{ir.NumInst(count), ir.NumInst(face), ir.SimpleInst(ir.Roll)}
}

func runMany(t *testing.T, prog *ir.Program, seed int64, n int) []int64 {
	t.Helper()
	src := rng.New(seed)
	out := make([]int64, n)
	for i := range out {
		out[i] = interp.Interpret(prog, src)
	}
	return out
}

func TestInterpret_SingleDie(t *testing.T) {
	prog := ir.New(dice(1, 6))
	for _, v := range runMany(t, prog, 1, 500) {
		assert.GreaterOrEqual(t, v, int64(1))
		assert.LessOrEqual(t, v, int64(6))
	}
}

func TestInterpret_MultiDie(t *testing.T) {
	prog := ir.New(dice(3, 6))
	for _, v := range runMany(t, prog, 1, 500) {
		assert.GreaterOrEqual(t, v, int64(3))
		assert.LessOrEqual(t, v, int64(18))
	}
}

func TestInterpret_ConstantArithmetic(t *testing.T) {
	code := []ir.Inst{ir.NumInst(3), ir.NumInst(7), ir.SimpleInst(ir.Add)}
	prog := ir.New(code)
	for _, v := range runMany(t, prog, 1, 10) {
		assert.Equal(t, int64(10), v)
	}
}

func TestInterpret_DiceMinusConstant(t *testing.T) {
	code := append(dice(2, 8), ir.NumInst(3), ir.SimpleInst(ir.Sub))
	prog := ir.New(code)
	for _, v := range runMany(t, prog, 1, 500) {
		assert.GreaterOrEqual(t, v, int64(-1))
		assert.LessOrEqual(t, v, int64(13))
	}
}

func TestInterpret_DropHighestOne(t *testing.T) {
	code := append(dice(3, 6), ir.NumInst(1), ir.SimpleInst(ir.DropHighest))
	prog := ir.New(code)
	for _, v := range runMany(t, prog, 1, 500) {
		assert.GreaterOrEqual(t, v, int64(2))
		assert.LessOrEqual(t, v, int64(12))
	}
}

func TestInterpret_BestOfTwo(t *testing.T) {
	body := dice(1, 20)
	code := append(append([]ir.Inst{}, body...), ir.NumInst(2), ir.CountInst(ir.BestOf, int64(len(body))))
	prog := ir.New(code)

	src := rng.New(7)
	var sum float64
	const n = 4000
	for i := 0; i < n; i++ {
		v := interp.Interpret(prog, src)
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, int64(20))
		sum += float64(v)
	}
	mean := sum / n
	// BestOf(2) on 1d20 biases well above the flat mean of 10.5.
	assert.Greater(t, mean, 12.5)
}

func TestInterpret_WorstOfTwo(t *testing.T) {
	body := dice(1, 20)
	code := append(append([]ir.Inst{}, body...), ir.NumInst(2), ir.CountInst(ir.WorstOf, int64(len(body))))
	prog := ir.New(code)

	src := rng.New(7)
	var sum float64
	const n = 4000
	for i := 0; i < n; i++ {
		v := interp.Interpret(prog, src)
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, int64(20))
		sum += float64(v)
	}
	mean := sum / n
	assert.Less(t, mean, 8.5)
}

func TestInterpret_RerollLowestZeroIsNoOp(t *testing.T) {
	code := append(dice(3, 6), ir.NumInst(0), ir.SimpleInst(ir.RerollLowest))
	prog := ir.New(code)
	for _, v := range runMany(t, prog, 3, 200) {
		assert.GreaterOrEqual(t, v, int64(3))
		assert.LessOrEqual(t, v, int64(18))
	}
	bare := runMany(t, ir.New(dice(3, 6)), 3, 200)
	assert.Equal(t, bare, runMany(t, prog, 3, 200))
}

// fixedSource replays vals in order, so a test knows exactly which dice a
// roll produced.
type fixedSource struct {
	vals []int64
	next int
}

func (s *fixedSource) Roll(face int64) int64 {
	v := s.vals[s.next%len(s.vals)]
	s.next++
	return v
}

func TestInterpret_VectorDiceStaySorted(t *testing.T) {
	code := append(dice(5, 20), ir.NumInst(1), ir.SimpleInst(ir.DropLowest))
	prog := ir.New(code)
	for _, v := range runMany(t, prog, 9, 200) {
		assert.GreaterOrEqual(t, v, int64(4))
		assert.LessOrEqual(t, v, int64(80))
	}
	// Rolled in the order 5, 1, 9, 3, 7: only a sorted vector drops the 1.
	got := interp.Interpret(prog, &fixedSource{vals: []int64{5, 1, 9, 3, 7}})
	assert.Equal(t, int64(24), got)
}

func TestInterpret_DeterministicWithSameSeed(t *testing.T) {
	prog := ir.New(dice(4, 10))
	a := runMany(t, prog, 42, 50)
	b := runMany(t, prog, 42, 50)
	assert.Equal(t, a, b)
}

func TestInterpret_DropLowestZeroIsNoOp(t *testing.T) {
	withDrop := ir.New(append(dice(4, 10), ir.NumInst(0), ir.SimpleInst(ir.DropLowest)))
	bare := ir.New(dice(4, 10))

	a := runMany(t, withDrop, 11, 200)
	b := runMany(t, bare, 11, 200)
	assert.Equal(t, a, b)
}

func TestInterpret_CeilTwiceEqualsCeilOfMin(t *testing.T) {
	twice := ir.New(append(dice(3, 20), ir.NumInst(10), ir.SimpleInst(ir.Ceil), ir.NumInst(15), ir.SimpleInst(ir.Ceil)))
	once := ir.New(append(dice(3, 20), ir.NumInst(10), ir.SimpleInst(ir.Ceil)))

	a := runMany(t, twice, 21, 200)
	b := runMany(t, once, 21, 200)
	assert.Equal(t, a, b)
}
