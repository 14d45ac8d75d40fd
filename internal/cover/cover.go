package cover

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Renderer draws deterministic 16:9 cover images for generated posts:
// gradient background, wrapped title and subtitle, accent tag in the
// bottom-right corner.
type Renderer struct {
	width  int
	height int
	tag    string
}

func NewRenderer(tag string) *Renderer {
	if tag == "" {
		tag = "Insight Helper"
	}
	return &Renderer{width: 1024, height: 576, tag: tag}
}

// Render produces the cover image for the given title and subtitle.
// The output depends only on the inputs.
func (r *Renderer) Render(title, subtitle string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))

	// vertical grayscale gradient
	for y := 0; y < r.height; y++ {
		c := uint8(22 + (float64(y)/float64(r.height))*60)
		for x := 0; x < r.width; x++ {
			img.Set(x, y, color.RGBA{c, c, c, 255})
		}
	}

	face := basicfont.Face7x13
	margin := 60
	maxWidth := r.width - 2*margin

	titleLines := wrap(title, face, maxWidth)
	subtitleLines := wrap(subtitle, face, maxWidth)

	lineHeight := face.Metrics().Height.Ceil() + 10
	y := r.height / 3
	for _, line := range titleLines {
		drawString(img, face, margin, y, line, color.RGBA{240, 250, 255, 255})
		y += lineHeight
	}
	y += 10
	for _, line := range subtitleLines {
		drawString(img, face, margin, y, line, color.RGBA{200, 210, 220, 255})
		y += lineHeight
	}

	r.drawTag(img, face)
	return img
}

// EncodePNG writes the image as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func (r *Renderer) drawTag(img *image.RGBA, face font.Face) {
	d := font.Drawer{Face: face}
	tw := d.MeasureString(r.tag).Ceil()
	th := face.Metrics().Height.Ceil()
	x0, y0 := r.width-tw-40, r.height-th-40
	x1, y1 := r.width-40, r.height-20
	accent := color.RGBA{30, 150, 255, 255}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.Set(x, y, accent)
		}
	}
	drawString(img, face, x0+10, y0+th, r.tag, color.RGBA{255, 255, 255, 255})
}

func drawString(img *image.RGBA, face font.Face, x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap breaks text into lines fitting maxWidth pixels, splitting on
// spaces only.
func wrap(text string, face font.Face, maxWidth int) []string {
	d := font.Drawer{Face: face}
	words := strings.Fields(text)
	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if d.MeasureString(candidate).Ceil() <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = w
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
