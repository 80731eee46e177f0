package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudice/internal/checker"
	"sudice/internal/parser"
)

func TestParse_BaselineScenarios(t *testing.T) {
	cases := []struct {
		name     string
		expr     string
		min, max int64
	}{
		{"single die", "1d6", 1, 6},
		{"multi die", "3d6", 3, 18},
		{"constant sum", "3 + 7", 10, 10},
		{"dice minus constant", "2d8 - 3", -1, 13},
		{"drop highest one", "3d6 \\h 1", 2, 12},
		{"best of two", "1d20 b 2", 1, 20},
		{"worst of two", "1d20 w 2", 1, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prog, err := parser.Parse(c.expr)
			require.NoError(t, err)
			min, max, err := checker.Check(prog)
			require.NoError(t, err)
			assert.Equal(t, c.min, min, "min")
			assert.Equal(t, c.max, max, "max")
		})
	}
}

func TestParse_Parens(t *testing.T) {
	prog, err := parser.Parse("(1d6 + 1d6) * 2")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(4), min)
	assert.Equal(t, int64(24), max)
}

func TestParse_ModifierChain(t *testing.T) {
	prog, err := parser.Parse("1d20 ^ 15 b 2")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(1), min)
	assert.Equal(t, int64(15), max)
}

func TestParse_SelectFallthroughArm(t *testing.T) {
	prog, err := parser.Parse("[1 ? 5 6]")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(5), min)
	assert.Equal(t, int64(5), max)
}

func TestParse_SelectOutOfRangeDefault(t *testing.T) {
	prog, err := parser.Parse("[99 ? 5 6]")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(99), min)
	assert.Equal(t, int64(99), max)
}

func TestParse_SelectOnDiceRoll(t *testing.T) {
	prog, err := parser.Parse("[1d20 > 10 ? 100 1]")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(1), min)
	assert.Equal(t, int64(100), max)
}

func TestParse_RerollOutOfRangeIsCheckError(t *testing.T) {
	prog, err := parser.Parse("1d6 rr 7")
	require.NoError(t, err)
	_, _, err = checker.Check(prog)
	assert.Error(t, err)
}

func TestParse_DropAllDiceIsCheckError(t *testing.T) {
	prog, err := parser.Parse("1d6 rl 1")
	require.NoError(t, err)
	_, _, err = checker.Check(prog)
	assert.NoError(t, err)

	prog, err = parser.Parse("1d6 \\l 1")
	require.NoError(t, err)
	_, _, err = checker.Check(prog)
	assert.Error(t, err)
}

func TestParse_SyntaxErrorReportsLocation(t *testing.T) {
	_, err := parser.Parse("1d6 +")
	require.Error(t, err)
}

func TestParse_BooleanAndCompare(t *testing.T) {
	prog, err := parser.Parse("1d6 > 3 and 1d6 < 4")
	require.NoError(t, err)
	min, max, err := checker.Check(prog)
	require.NoError(t, err)
	assert.Equal(t, int64(1), min)
	assert.Equal(t, int64(2), max)
}
