package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAngles(t *testing.T) {
	tests := []struct {
		name string
		raw  [3]float32
		want Pose
	}{
		// Raw order is (pitch, -yaw, roll).
		{"front", [3]float32{5, 5, 0}, PoseFront},
		{"right", [3]float32{5, -25, 0}, PoseRight},
		{"left", [3]float32{5, 25, 0}, PoseLeft},
		{"up", [3]float32{25, 5, 0}, PoseUp},
		{"down", [3]float32{-25, 5, 0}, PoseDown},
		{"yaw beats pitch", [3]float32{25, -25, 0}, PoseRight},
		{"exactly at threshold stays front", [3]float32{20, 20, 0}, PoseFront},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			got := ClassifyAngles(&raw, 20)
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestClassifyAnglesRemap(t *testing.T) {
	raw := [3]float32{10, 30, -5}
	got := ClassifyAngles(&raw, 20)

	assert.InDelta(t, 10, got.Pitch, 1e-6)
	assert.InDelta(t, -30, got.Yaw, 1e-6, "yaw is the negated second component")
	assert.InDelta(t, -5, got.Roll, 1e-6)
}

func TestClassifyAnglesNilIsFront(t *testing.T) {
	got := ClassifyAngles(nil, 20)
	assert.Equal(t, PoseFront, got.Type)
	assert.Zero(t, got.Yaw)
	assert.Zero(t, got.Pitch)
	assert.Zero(t, got.Roll)
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, -160, normalizeAngle(200), 1e-9)
	assert.InDelta(t, 160, normalizeAngle(-200), 1e-9)
	assert.InDelta(t, 180, normalizeAngle(180), 1e-9)
	assert.InDelta(t, 180, normalizeAngle(-180), 1e-9)
	assert.InDelta(t, 0, normalizeAngle(360), 1e-9)
}

func TestNormalizeAngleNonFinite(t *testing.T) {
	assert.Zero(t, normalizeAngle(math.Inf(1)))
	assert.Zero(t, normalizeAngle(math.Inf(-1)))
	assert.Zero(t, normalizeAngle(math.NaN()))
}

func TestClassifyAnglesNonFiniteIsFront(t *testing.T) {
	raw := [3]float32{float32(math.Inf(1)), float32(math.Inf(-1)), 0}
	got := ClassifyAngles(&raw, 20)
	assert.Equal(t, PoseFront, got.Type)
	assert.Zero(t, got.Yaw)
	assert.Zero(t, got.Pitch)
}
