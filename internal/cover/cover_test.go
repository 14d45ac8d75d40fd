package cover

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func TestRenderDimensions(t *testing.T) {
	r := NewRenderer("LinkedIn Insight")
	img := r.Render("AI infrastructure trends", "AI-driven insight")
	b := img.Bounds()
	assert.Equal(t, 1024, b.Dx())
	assert.Equal(t, 576, b.Dy())
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer("tag")
	encode := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, EncodePNG(&buf, r.Render("Title line", "subtitle")))
		return buf.Bytes()
	}
	assert.Equal(t, encode(), encode(), "same inputs must produce identical bytes")
}

func TestRenderHandlesEmptyText(t *testing.T) {
	r := NewRenderer("")
	img := r.Render("", "")
	assert.Equal(t, 1024, img.Bounds().Dx())
}

func TestRenderLongTitleStaysInsideCanvas(t *testing.T) {
	r := NewRenderer("tag")
	long := "An extremely long generated headline that will certainly not fit on one rendered line and must wrap"
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, r.Render(long, "sub")))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 576, decoded.Bounds().Dy())
}

func TestWrapRespectsWidth(t *testing.T) {
	face := basicfont.Face7x13
	lines := wrap("alpha beta gamma delta epsilon zeta", face, 80)
	assert.Greater(t, len(lines), 1)
	d := font.Drawer{Face: face}
	for _, l := range lines {
		assert.LessOrEqual(t, d.MeasureString(l).Ceil(), 80)
	}

	assert.Empty(t, wrap("", face, 80))
}
