package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/odekit/internal/experiment"
)

func report() *experiment.Report {
	return &experiment.Report{
		Times:     []float64{0, 1, 2},
		States:    [][]float64{{0, 1}, {1, 0}, {0, -1}},
		Reference: [][]float64{{0, 1}, nil, {0, -1}},
	}
}

func TestSVGTimeSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, report(), Time, 0, DefaultOptions()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "stroke-dasharray")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestSVGPhasePlaneWithoutReference(t *testing.T) {
	opts := DefaultOptions()
	opts.Reference = false

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, report(), 0, 1, opts))
	assert.Equal(t, 1, strings.Count(buf.String(), "<path"))
}

func TestSVGScalesIntoViewBox(t *testing.T) {
	opts := Options{Width: 100, Height: 50, Stroke: "red"}
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, report(), Time, 0, opts))

	// x in [0, 2] padded to [-0.2, 2.2]; first sample maps to 0.2/2.4 of the width
	assert.Contains(t, buf.String(), `d="M8.3,`)
}

func TestSVGErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, SVG(&buf, &experiment.Report{}, Time, 0, DefaultOptions()))
	assert.Error(t, SVG(&buf, report(), Time, 2, DefaultOptions()))
	assert.Error(t, SVG(&buf, report(), Time, 0, Options{}))

	short := &experiment.Report{Times: []float64{0}, States: [][]float64{{1}}}
	assert.Error(t, SVG(&buf, short, Time, 0, DefaultOptions()))
}
