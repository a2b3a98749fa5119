package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveGamma(t *testing.T) {
	// Mid-range brightness is left alone.
	assert.Equal(t, 1.0, adaptiveGamma(128))
	assert.Equal(t, 1.0, adaptiveGamma(0))

	// Dark frames get an exponent below 1 (brighten), clamped at 0.5.
	assert.Equal(t, 0.5, adaptiveGamma(40))
	g := adaptiveGamma(80)
	assert.Greater(t, g, 0.5)
	assert.Less(t, g, 1.0)

	// Bright frames get an exponent above 1 (darken), clamped at 2.
	assert.Equal(t, 2.0, adaptiveGamma(240))
}

func TestApplyGammaBrightensDarkPixels(t *testing.T) {
	img := uniformImage(8, 40)
	out := applyGamma(img, 0.5)

	b, _, _ := out.BGR(4, 4)
	assert.Greater(t, b, byte(40))

	// Input stays untouched.
	ob, _, _ := img.BGR(4, 4)
	assert.Equal(t, byte(40), ob)
}

func TestApplyGammaIdentity(t *testing.T) {
	img := uniformImage(8, 131)
	out := applyGamma(img, 1)
	assert.Equal(t, img.Pix, out.Pix)
}

func TestEnhanceBrightensDarkFrame(t *testing.T) {
	img := uniformImage(64, 40)
	out := Enhance(img)

	assert.Equal(t, img.W, out.W)
	assert.Equal(t, img.H, out.H)
	assert.Greater(t, out.MeanBrightness(), img.MeanBrightness())
}

func TestEnhanceKeepsDimensions(t *testing.T) {
	img := checkerImage(32)
	out := Enhance(img)
	assert.Equal(t, 32, out.W)
	assert.Equal(t, 32, out.H)
	assert.Len(t, out.Pix, len(img.Pix))
}

func TestDenoiseSmoothsImpulse(t *testing.T) {
	img := uniformImage(9, 100)
	img.SetBGR(4, 4, 255, 255, 255)

	out := denoise3x3(img)
	b, _, _ := out.BGR(4, 4)
	assert.Less(t, b, byte(255))
	assert.Greater(t, b, byte(100))
}

func TestScaleByteClamps(t *testing.T) {
	assert.Equal(t, byte(255), scaleByte(200, 2.0))
	assert.Equal(t, byte(100), scaleByte(200, 0.5))
}
