package vision

import "math"

// Pose is the coarse head-orientation bucket used to drive guided
// multi-angle enrollment capture.
type Pose string

const (
	PoseFront Pose = "front"
	PoseLeft  Pose = "left"
	PoseRight Pose = "right"
	PoseUp    Pose = "up"
	PoseDown  Pose = "down"
)

// PoseResult carries remapped angles in degrees plus the classified bucket.
type PoseResult struct {
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
	Roll  float64    `json:"roll"`
	Type  Pose       `json:"pose_type"`
	BBox  [4]float32 `json:"bbox"`
}

// ClassifyAngles converts raw model angles into a PoseResult. The model
// reports angles in its own axis order: pitch is the first raw component
// unmodified, yaw is the NEGATED second component, roll the third. Each
// angle is normalized into (-180, 180] before bucketing.
//
// A nil raw triple (model without a pose head) produces a front result
// with zeroed angles; that is a degraded-but-valid answer, not an error.
func ClassifyAngles(raw *[3]float32, thresholdDeg float64) PoseResult {
	if raw == nil {
		return PoseResult{Type: PoseFront}
	}

	pitch := normalizeAngle(float64(raw[0]))
	yaw := normalizeAngle(-float64(raw[1]))
	roll := normalizeAngle(float64(raw[2]))

	return PoseResult{
		Yaw:   yaw,
		Pitch: pitch,
		Roll:  roll,
		Type:  classifyPose(yaw, pitch, thresholdDeg),
	}
}

// classifyPose buckets yaw/pitch; yaw takes priority over pitch.
func classifyPose(yaw, pitch, threshold float64) Pose {
	if yaw < -threshold {
		return PoseLeft
	}
	if yaw > threshold {
		return PoseRight
	}
	if pitch > threshold {
		return PoseUp
	}
	if pitch < -threshold {
		return PoseDown
	}
	return PoseFront
}

// normalizeAngle wraps an angle into (-180, 180]. Non-finite input
// (a degenerate model output) maps to 0 so the wrap loops terminate.
func normalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	for a > 180 {
		a -= 360
	}
	for a <= -180 {
		a += 360
	}
	return a
}
