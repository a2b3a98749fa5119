package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Image is a decoded frame as a BGR byte buffer, 3 bytes per pixel,
// row-major. This is the pixel layout the pipeline operates on; decoding
// from upload formats happens at the HTTP boundary via Decode.
type Image struct {
	W, H int
	Pix  []byte // len == W*H*3, B G R per pixel
}

// NewImage allocates a zeroed BGR image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]byte, w*h*3)}
}

// Decode parses JPEG or PNG bytes into a BGR buffer.
func Decode(data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromStdImage(img), nil
}

// FromStdImage converts a standard library image into a BGR buffer.
func FromStdImage(img image.Image) *Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	out := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			i := (y*w + x) * 3
			out.Pix[i+0] = byte(b >> 8)
			out.Pix[i+1] = byte(g >> 8)
			out.Pix[i+2] = byte(r >> 8)
		}
	}
	return out
}

// BGR returns the blue, green and red components at (x, y).
func (m *Image) BGR(x, y int) (byte, byte, byte) {
	i := (y*m.W + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// SetBGR writes one pixel.
func (m *Image) SetBGR(x, y int, b, g, r byte) {
	i := (y*m.W + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = b, g, r
}

// Gray renders the image as 8-bit grayscale using BT.601 luma weights.
func (m *Image) Gray() []byte {
	out := make([]byte, m.W*m.H)
	for i := 0; i < m.W*m.H; i++ {
		b := float64(m.Pix[i*3+0])
		g := float64(m.Pix[i*3+1])
		r := float64(m.Pix[i*3+2])
		out[i] = byte(0.299*r + 0.587*g + 0.114*b)
	}
	return out
}

// MeanBrightness returns the mean grayscale value over the whole frame.
func (m *Image) MeanBrightness() float64 {
	if m.W == 0 || m.H == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.Gray() {
		sum += float64(v)
	}
	return sum / float64(m.W*m.H)
}

// Crop returns a copy of the region [x1,x2)×[y1,y2), clamped to bounds.
// Returns nil when the clamped region is empty.
func (m *Image) Crop(x1, y1, x2, y2 int) *Image {
	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > m.W {
		x2 = m.W
	}
	if y2 > m.H {
		y2 = m.H
	}
	if x2-x1 <= 0 || y2-y1 <= 0 {
		return nil
	}

	out := NewImage(x2-x1, y2-y1)
	for y := y1; y < y2; y++ {
		src := (y*m.W + x1) * 3
		dst := (y - y1) * out.W * 3
		copy(out.Pix[dst:dst+out.W*3], m.Pix[src:src+out.W*3])
	}
	return out
}

// Resize performs nearest-neighbour resize (fast, good enough for ML input).
func (m *Image) Resize(targetW, targetH int) *Image {
	out := NewImage(targetW, targetH)
	for y := 0; y < targetH; y++ {
		srcY := y * m.H / targetH
		for x := 0; x < targetW; x++ {
			srcX := x * m.W / targetW
			b, g, r := m.BGR(srcX, srcY)
			out.SetBGR(x, y, b, g, r)
		}
	}
	return out
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := NewImage(m.W, m.H)
	copy(out.Pix, m.Pix)
	return out
}

// CHW resizes the image and lays it out as CHW float32 in RGB channel order
// with per-channel normalization:
//
//	pixel = (pixel - mean) / std
func (m *Image) CHW(targetW, targetH int, mean, std [3]float32) []float32 {
	resized := m
	if m.W != targetW || m.H != targetH {
		resized = m.Resize(targetW, targetH)
	}

	data := make([]float32, 3*targetH*targetW)
	plane := targetH * targetW

	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			b, g, r := resized.BGR(x, y)
			idx := y*targetW + x
			data[0*plane+idx] = (float32(r) - mean[0]) / std[0]
			data[1*plane+idx] = (float32(g) - mean[1]) / std[1]
			data[2*plane+idx] = (float32(b) - mean[2]) / std[2]
		}
	}

	return data
}
