// Package svgmap renders a catalogue's stops and buses into an SVG
// document (§4.6), the Go rendering of the original's svg.h/map_renderer.h
// pair. It writes SVG markup directly with fmt/strings rather than through
// an XML encoder, since a hand-built svg.Document (as the original has) is
// what every element's exact attribute set and draw order depend on.
package svgmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/routewise/transitcore/internal/geo"
)

// Settings mirror the original's RenderSettings: canvas size, padding,
// line/label styling and the colour palette buses cycle through.
type Settings struct {
	Width, Height       float64
	Padding             float64
	LineWidth           float64
	StopRadius          float64
	BusLabelFontSize    int
	BusLabelOffsetX     float64
	BusLabelOffsetY     float64
	StopLabelFontSize   int
	StopLabelOffsetX    float64
	StopLabelOffsetY    float64
	UnderlayerColor     string
	UnderlayerWidth     float64
	ColorPalette        []string
}

// DefaultSettings mirrors a typical course-exercise configuration; callers
// normally override it from their own config source.
func DefaultSettings() Settings {
	return Settings{
		Width: 1200, Height: 1200, Padding: 50,
		LineWidth: 14, StopRadius: 5,
		BusLabelFontSize: 20, BusLabelOffsetX: 7, BusLabelOffsetY: 15,
		StopLabelFontSize: 20, StopLabelOffsetX: 7, StopLabelOffsetY: -3,
		UnderlayerColor: "rgba(255,255,255,0.85)", UnderlayerWidth: 3,
		ColorPalette: []string{"green", "rgb(255,160,0)", "purple", "red", "blue"},
	}
}

// projector maps geographic coordinates onto the SVG canvas by the
// standard min/max-bounding-box linear projection, flipping latitude since
// SVG y grows downward while latitude grows north.
type projector struct {
	minLat, maxLat float64
	minLng, maxLng float64
	zoom           float64
	padding        float64
}

func newProjector(coords []geo.Coordinates, width, height, padding float64) projector {
	if len(coords) == 0 {
		return projector{padding: padding}
	}

	p := projector{
		minLat: coords[0].Lat, maxLat: coords[0].Lat,
		minLng: coords[0].Lng, maxLng: coords[0].Lng,
		padding: padding,
	}
	for _, c := range coords[1:] {
		p.minLat = min(p.minLat, c.Lat)
		p.maxLat = max(p.maxLat, c.Lat)
		p.minLng = min(p.minLng, c.Lng)
		p.maxLng = max(p.maxLng, c.Lng)
	}

	lngSpan := p.maxLng - p.minLng
	latSpan := p.maxLat - p.minLat

	var widthZoom, heightZoom float64
	var haveWidthZoom, haveHeightZoom bool
	if !geo.IsZero(lngSpan) {
		widthZoom = (width - 2*padding) / lngSpan
		haveWidthZoom = true
	}
	if !geo.IsZero(latSpan) {
		heightZoom = (height - 2*padding) / latSpan
		haveHeightZoom = true
	}

	switch {
	case haveWidthZoom && haveHeightZoom:
		p.zoom = min(widthZoom, heightZoom)
	case haveWidthZoom:
		p.zoom = widthZoom
	case haveHeightZoom:
		p.zoom = heightZoom
	default:
		p.zoom = 0
	}

	return p
}

func (p projector) project(c geo.Coordinates) (x, y float64) {
	x = (c.Lng-p.minLng)*p.zoom + p.padding
	y = (p.maxLat-c.Lat)*p.zoom + p.padding
	return x, y
}

// Render builds the SVG document for the whole catalogue: bus polylines,
// bus terminal labels, stop circles and stop labels, drawn in that order
// (§4.6).
func Render(c *catalogue.Catalogue, settings Settings) string {
	stopNames := c.AllStopNamesWithBuses()
	busNames := c.AllBusNames()

	coords := make([]geo.Coordinates, 0, len(stopNames))
	stopCoord := make(map[string]geo.Coordinates, len(stopNames))
	for _, name := range stopNames {
		id, ok := c.FindStop(name)
		if !ok {
			continue
		}
		co := c.Stop(id).Coordinates
		stopCoord[name] = co
		coords = append(coords, co)
	}
	proj := newProjector(coords, settings.Width, settings.Height, settings.Padding)

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" ?>`+"\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1">`+"\n")

	drawBusLines(&b, c, busNames, stopCoord, proj, settings)
	drawBusLabels(&b, c, busNames, stopCoord, proj, settings)
	drawStopCircles(&b, stopNames, stopCoord, proj, settings)
	drawStopLabels(&b, stopNames, stopCoord, proj, settings)

	b.WriteString("</svg>")
	return b.String()
}

func paletteColor(settings Settings, index int) string {
	if len(settings.ColorPalette) == 0 {
		return "black"
	}
	return settings.ColorPalette[index%len(settings.ColorPalette)]
}

func drawBusLines(b *strings.Builder, c *catalogue.Catalogue, busNames []string, stopCoord map[string]geo.Coordinates, proj projector, settings Settings) {
	colorIdx := 0
	for _, name := range busNames {
		id, ok := c.FindBus(name)
		if !ok {
			continue
		}
		bus := c.Bus(id)
		if len(bus.Stops) == 0 {
			continue
		}

		fmt.Fprintf(b, `<polyline points="`)
		for i, sid := range bus.Stops {
			stop := c.Stop(sid)
			x, y := proj.project(stop.Coordinates)
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "%g,%g", x, y)
		}
		fmt.Fprintf(b, `" fill="none" stroke="%s" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			paletteColor(settings, colorIdx), settings.LineWidth)
		colorIdx++
	}
}

func textLabel(b *strings.Builder, x, y float64, dx, dy float64, fontSize int, bold bool, underlayer, fill, data string, underlayerWidth float64) {
	weight := ""
	if bold {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(b, `<text x="%g" y="%g" dx="%g" dy="%g" font-size="%d" font-family="Verdana"%s fill="%s" stroke="%s" stroke-width="%g" stroke-linecap="round" stroke-linejoin="round">%s</text>`+"\n",
		x, y, dx, dy, fontSize, weight, underlayer, underlayer, underlayerWidth, data)
	fmt.Fprintf(b, `<text x="%g" y="%g" dx="%g" dy="%g" font-size="%d" font-family="Verdana"%s fill="%s">%s</text>`+"\n",
		x, y, dx, dy, fontSize, weight, fill, data)
}

func drawBusLabels(b *strings.Builder, c *catalogue.Catalogue, busNames []string, stopCoord map[string]geo.Coordinates, proj projector, settings Settings) {
	colorIdx := 0
	for _, name := range busNames {
		id, ok := c.FindBus(name)
		if !ok {
			continue
		}
		bus := c.Bus(id)
		if len(bus.Stops) == 0 {
			continue
		}

		color := paletteColor(settings, colorIdx)
		first := c.Stop(bus.Stops[0]).Coordinates
		x, y := proj.project(first)
		textLabel(b, x, y, settings.BusLabelOffsetX, settings.BusLabelOffsetY,
			settings.BusLabelFontSize, true, settings.UnderlayerColor, color, name, settings.UnderlayerWidth)

		if !bus.IsRoundtrip {
			midIdx := len(bus.Stops) / 2
			if bus.Stops[midIdx] != bus.Stops[0] {
				mid := c.Stop(bus.Stops[midIdx]).Coordinates
				mx, my := proj.project(mid)
				textLabel(b, mx, my, settings.BusLabelOffsetX, settings.BusLabelOffsetY,
					settings.BusLabelFontSize, true, settings.UnderlayerColor, color, name, settings.UnderlayerWidth)
			}
		}

		colorIdx++
	}
}

func drawStopCircles(b *strings.Builder, stopNames []string, stopCoord map[string]geo.Coordinates, proj projector, settings Settings) {
	for _, name := range stopNames {
		x, y := proj.project(stopCoord[name])
		fmt.Fprintf(b, `<circle cx="%g" cy="%g" r="%g" fill="white"/>`+"\n", x, y, settings.StopRadius)
	}
}

func drawStopLabels(b *strings.Builder, stopNames []string, stopCoord map[string]geo.Coordinates, proj projector, settings Settings) {
	names := append([]string(nil), stopNames...)
	sort.Strings(names)
	for _, name := range names {
		x, y := proj.project(stopCoord[name])
		textLabel(b, x, y, settings.StopLabelOffsetX, settings.StopLabelOffsetY,
			settings.StopLabelFontSize, false, settings.UnderlayerColor, "black", name, settings.UnderlayerWidth)
	}
}
