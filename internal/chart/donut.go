// Package chart renders small SVG charts for the dashboard cards.
package chart

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"caredash/internal/models"
)

// Slice is one labelled share of a donut.
type Slice struct {
	Label   string  `json:"label"`
	Value   int64   `json:"value"`
	Color   string  `json:"color"`
	Percent float64 `json:"percent"` // filled in by NewDonut
	Path    string  `json:"-"`       // SVG path data, filled in by NewDonut
}

// Donut is a pie chart with a hole, ready to be drawn.
type Donut struct {
	Title  string
	Size   float64
	Hole   float64 // Inner radius as a fraction of the outer radius
	Slices []Slice
	Total  int64
}

// Slice colors, in the order slices are added.
var palette = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa"}

// NewDonut lays out slices clockwise from twelve o'clock. Empty slices are dropped.
func NewDonut(title string, size, hole float64, slices []Slice) Donut {
	d := Donut{Title: title, Size: size, Hole: hole}
	for _, s := range slices {
		if s.Value > 0 {
			d.Total += s.Value
			d.Slices = append(d.Slices, s)
		}
	}
	if d.Total == 0 {
		return d
	}

	r := size / 2
	inner := r * hole
	angle := -math.Pi / 2
	for i := range d.Slices {
		s := &d.Slices[i]
		if s.Color == "" {
			s.Color = palette[i%len(palette)]
		}
		share := float64(s.Value) / float64(d.Total)
		s.Percent = math.Round(share*1000) / 10
		sweep := share * 2 * math.Pi
		s.Path = arc(r, inner, angle, sweep)
		angle += sweep
	}
	return d
}

// AttendanceDonut charts yesterday's cafeteria attendance.
func AttendanceDonut(a models.Attendance) Donut {
	return NewDonut("In Cafeteria gestern erschienen", 300, 0.4, []Slice{
		{Label: "War Anwesend", Value: a.Appeared},
		{Label: "Nicht erschienen", Value: a.Missed},
		{Label: "Unbekannt", Value: a.Other},
	})
}

// arc returns the path of a ring segment centered in a size x size box.
func arc(r, inner, start, sweep float64) string {
	// A full circle cannot be drawn as a single arc; split it in two halves
	if sweep >= 2*math.Pi-1e-9 {
		return arc(r, inner, start, math.Pi) + " " + arc(r, inner, start+math.Pi, math.Pi)
	}

	end := start + sweep
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	cx, cy := r, r
	x0, y0 := cx+r*math.Cos(start), cy+r*math.Sin(start)
	x1, y1 := cx+r*math.Cos(end), cy+r*math.Sin(end)
	x2, y2 := cx+inner*math.Cos(end), cy+inner*math.Sin(end)
	x3, y3 := cx+inner*math.Cos(start), cy+inner*math.Sin(start)

	var b strings.Builder
	fmt.Fprintf(&b, "M%.2f %.2f ", x0, y0)
	fmt.Fprintf(&b, "A%.2f %.2f 0 %d 1 %.2f %.2f ", r, r, large, x1, y1)
	fmt.Fprintf(&b, "L%.2f %.2f ", x2, y2)
	fmt.Fprintf(&b, "A%.2f %.2f 0 %d 0 %.2f %.2f Z", inner, inner, large, x3, y3)
	return b.String()
}

// SVG renders the donut as inline markup.
func (d Donut) SVG() template.HTML {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f" role="img" aria-label="%s">`,
		d.Size, d.Size, d.Size, d.Size, template.HTMLEscapeString(d.Title))
	for _, s := range d.Slices {
		fmt.Fprintf(&b, `<path d="%s" fill="%s"><title>%s: %d (%.1f%%)</title></path>`,
			s.Path, s.Color, template.HTMLEscapeString(s.Label), s.Value, s.Percent)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
