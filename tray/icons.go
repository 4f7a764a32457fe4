package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var (
	iconIdle      []byte
	iconRecording []byte
)

func init() {
	green := color.RGBA{R: 0xb3, G: 0xe6, B: 0x4d, A: 0xff}
	red := color.RGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	iconIdle = renderMicIcon(64, green)
	iconRecording = renderMicIcon(64, red)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderMicIcon draws a microphone: capsule body, cradle arc, stem and
// base, scaled to the given square size.
func renderMicIcon(size int, body color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	s := float64(size) / 64.0

	// Capsule body: rounded rect from (24,8) to (40,36), radius 8.
	fill(img, func(x, y float64) bool {
		return inRoundedRect(x, y, 24*s, 8*s, 40*s, 36*s, 8*s)
	}, body)

	// Cradle: lower half of a ring centered at (32,36), radius 16.
	fill(img, func(x, y float64) bool {
		dx, dy := x-32*s, y-36*s
		r2 := dx*dx + dy*dy
		outer, inner := 16*s, 12*s
		return dy >= 0 && r2 <= outer*outer && r2 >= inner*inner
	}, white)

	// Stem from (32,52) down to (32,60), base from (20,60) to (44,60).
	fill(img, func(x, y float64) bool {
		if x >= 30*s && x <= 34*s && y >= 52*s && y <= 60*s {
			return true
		}
		return x >= 20*s && x <= 44*s && y >= 58*s && y <= 62*s
	}, white)

	return encodePNG(img)
}

func fill(img *image.RGBA, inside func(x, y float64) bool, c color.RGBA) {
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			if inside(float64(px)+0.5, float64(py)+0.5) {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

func inRoundedRect(x, y, x0, y0, x1, y1, r float64) bool {
	if x < x0 || x > x1 || y < y0 || y > y1 {
		return false
	}
	cx := clamp(x, x0+r, x1-r)
	cy := clamp(y, y0+r, y1-r)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
