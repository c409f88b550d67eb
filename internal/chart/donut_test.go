package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caredash/internal/models"
)

func TestAttendanceDonut(t *testing.T) {
	d := AttendanceDonut(models.Attendance{Appeared: 3, Missed: 1})

	assert.Equal(t, "In Cafeteria gestern erschienen", d.Title)
	assert.Equal(t, int64(4), d.Total)
	require.Len(t, d.Slices, 2) // empty "Unbekannt" slice dropped
	assert.Equal(t, "War Anwesend", d.Slices[0].Label)
	assert.Equal(t, 75.0, d.Slices[0].Percent)
	assert.Equal(t, 25.0, d.Slices[1].Percent)
}

func TestDonutTotalMatchesAttendance(t *testing.T) {
	a := models.Attendance{Appeared: 7, Missed: 5, Other: 2}
	d := AttendanceDonut(a)

	var sum int64
	var percent float64
	for _, s := range d.Slices {
		sum += s.Value
		percent += s.Percent
	}
	assert.Equal(t, a.Total(), sum)
	assert.InDelta(t, 100, percent, 0.2)
}

func TestDonutEmpty(t *testing.T) {
	d := AttendanceDonut(models.Attendance{})
	assert.Zero(t, d.Total)
	assert.Empty(t, d.Slices)
	assert.NotContains(t, string(d.SVG()), "<path")
}

func TestDonutSingleSliceDrawsFullRing(t *testing.T) {
	d := NewDonut("all", 100, 0.4, []Slice{{Label: "only", Value: 9}})
	require.Len(t, d.Slices, 1)
	// Two half arcs, each with an outer and inner arc command
	assert.Equal(t, 4, strings.Count(d.Slices[0].Path, "A"))
	assert.Equal(t, 100.0, d.Slices[0].Percent)
}

func TestSVGEscapesLabels(t *testing.T) {
	d := NewDonut("<b>", 100, 0.4, []Slice{{Label: "a<script>", Value: 1}, {Label: "b", Value: 1}})
	svg := string(d.SVG())
	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "a&lt;script&gt;")
	assert.Equal(t, 2, strings.Count(svg, "<path"))
}
