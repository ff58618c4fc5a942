package svgmap

import (
	"strings"
	"testing"

	"github.com/routewise/transitcore/internal/catalogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTwoStopCatalogue() *catalogue.Catalogue {
	c := catalogue.New()
	c.AddStop("A", 55.611087, 37.20829)
	c.AddStop("B", 55.595884, 37.209755)
	c.AddDistance("A", "B", 3900)
	c.AddDistance("B", "A", 3900)
	c.AddBus("X", []string{"A", "B", "A"}, false)
	return c
}

func TestRenderProducesWellFormedSVG(t *testing.T) {
	c := buildTwoStopCatalogue()
	doc := Render(c, DefaultSettings())

	require.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8" ?>`))
	assert.True(t, strings.HasSuffix(doc, "</svg>"))
	assert.Contains(t, doc, "<polyline")
	assert.Contains(t, doc, "<circle")
	assert.Contains(t, doc, ">A<")
	assert.Contains(t, doc, ">X<")
}

func TestRenderSkipsStopsWithNoBuses(t *testing.T) {
	c := buildTwoStopCatalogue()
	c.AddStop("Lonely", 0, 0)

	doc := Render(c, DefaultSettings())
	assert.NotContains(t, doc, ">Lonely<")
}

func TestRenderEmptyCatalogueIsValidDocument(t *testing.T) {
	c := catalogue.New()
	doc := Render(c, DefaultSettings())
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8" ?>`+"\n"+
		`<svg xmlns="http://www.w3.org/2000/svg" version="1.1">`+"\n</svg>", doc)
}
