package vision

import "math"

// Enhance preprocesses a frame for detection under poor lighting:
// adaptive gamma correction driven by mean brightness, CLAHE contrast
// equalization on the luma channel only (chroma ratios preserved), and a
// mild 3x3 Gaussian denoise. Callers fall back to the raw frame when the
// enhanced one yields no detection.
func Enhance(img *Image) *Image {
	out := applyGamma(img, adaptiveGamma(img.MeanBrightness()))
	out = claheLuma(out, 8, 8, 2.0)
	return denoise3x3(out)
}

// adaptiveGamma picks a gamma that pulls the mean brightness toward
// mid-gray. Near-normal frames get gamma 1 (no-op).
func adaptiveGamma(mean float64) float64 {
	if mean <= 0 {
		return 1
	}
	norm := mean / 255.0
	if norm > 0.35 && norm < 0.65 {
		return 1
	}
	g := math.Log(0.5) / math.Log(norm)
	if g < 0.5 {
		g = 0.5
	}
	if g > 2.0 {
		g = 2.0
	}
	return g
}

func applyGamma(img *Image, gamma float64) *Image {
	if gamma == 1 {
		return img.Clone()
	}

	var lut [256]byte
	for i := range lut {
		lut[i] = byte(math.Min(255, 255*math.Pow(float64(i)/255.0, gamma)))
	}

	out := NewImage(img.W, img.H)
	for i, v := range img.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// claheLuma runs contrast-limited adaptive histogram equalization on the
// luma channel with tilesX x tilesY tiles, then scales all three BGR
// channels by the per-pixel luma gain so hue is preserved.
func claheLuma(img *Image, tilesX, tilesY int, clipLimit float64) *Image {
	if img.W < tilesX || img.H < tilesY {
		return img
	}

	gray := img.Gray()
	tileW := img.W / tilesX
	tileH := img.H / tilesY

	// Per-tile clipped-histogram CDF mapping
	maps := make([][256]float64, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := x0+tileW, y0+tileH
			if tx == tilesX-1 {
				x1 = img.W
			}
			if ty == tilesY-1 {
				y1 = img.H
			}

			var hist [256]float64
			n := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[gray[y*img.W+x]]++
					n++
				}
			}

			// Clip and redistribute excess uniformly
			clip := clipLimit * float64(n) / 256.0
			var excess float64
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			bonus := excess / 256.0

			var cdf float64
			m := &maps[ty*tilesX+tx]
			for i := 0; i < 256; i++ {
				cdf += hist[i] + bonus
				m[i] = 255.0 * cdf / float64(n)
			}
		}
	}

	out := NewImage(img.W, img.H)
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			v := gray[y*img.W+x]

			// Bilinear interpolation between the four surrounding
			// tile mappings
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)
			tx0 := int(math.Floor(fx))
			ty0 := int(math.Floor(fy))
			wx := fx - float64(tx0)
			wy := fy - float64(ty0)

			tx1 := tx0 + 1
			ty1 := ty0 + 1
			tx0 = clampI(tx0, 0, tilesX-1)
			tx1 = clampI(tx1, 0, tilesX-1)
			ty0 = clampI(ty0, 0, tilesY-1)
			ty1 = clampI(ty1, 0, tilesY-1)

			top := maps[ty0*tilesX+tx0][v]*(1-wx) + maps[ty0*tilesX+tx1][v]*wx
			bot := maps[ty1*tilesX+tx0][v]*(1-wx) + maps[ty1*tilesX+tx1][v]*wx
			newY := top*(1-wy) + bot*wy

			gain := 1.0
			if v > 0 {
				gain = newY / float64(v)
			}

			b, g, r := img.BGR(x, y)
			out.SetBGR(x, y,
				scaleByte(b, gain), scaleByte(g, gain), scaleByte(r, gain))
		}
	}
	return out
}

// denoise3x3 applies a single-pass 3x3 Gaussian blur per channel.
func denoise3x3(img *Image) *Image {
	kernel := [3][3]int{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}

	out := NewImage(img.W, img.H)
	copy(out.Pix, img.Pix)

	for y := 1; y < img.H-1; y++ {
		for x := 1; x < img.W-1; x++ {
			var sb, sg, sr int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					k := kernel[ky+1][kx+1]
					b, g, r := img.BGR(x+kx, y+ky)
					sb += k * int(b)
					sg += k * int(g)
					sr += k * int(r)
				}
			}
			out.SetBGR(x, y, byte(sb/16), byte(sg/16), byte(sr/16))
		}
	}
	return out
}

func scaleByte(v byte, gain float64) byte {
	s := float64(v) * gain
	if s > 255 {
		return 255
	}
	if s < 0 {
		return 0
	}
	return byte(s)
}

func clampI(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
