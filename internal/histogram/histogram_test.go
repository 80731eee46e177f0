package histogram_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudice/internal/estimator"
	"sudice/internal/histogram"
)

func TestRender_Basic(t *testing.T) {
	r := &estimator.Results{
		RunID: uuid.New(),
		Min:   1,
		Max:   6,
		Hist:  []uint64{10, 20, 30, 20, 15, 5},
		Total: 100,
		EV:    3.5,
		SD:    1.7,
	}

	var buf bytes.Buffer
	require.NoError(t, histogram.Render(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "range   [1, 6]")
	assert.Contains(t, out, "samples 100")
	assert.Contains(t, out, "mean    3.5000")
	assert.Contains(t, out, "stddev  1.7000")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// headline + 4 summary lines + blank + one line per bucket.
	assert.Len(t, lines, 6+len(r.Hist))
}

func TestRender_EmptyHistogramDoesNotDivideByZero(t *testing.T) {
	r := &estimator.Results{
		RunID: uuid.New(),
		Min:   10,
		Max:   10,
		Hist:  []uint64{0},
		Total: 0,
		EV:    0,
		SD:    0,
	}

	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		require.NoError(t, histogram.Render(&buf, r))
	})
}
