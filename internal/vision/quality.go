package vision

import (
	"strings"

	"github.com/your-org/attend/internal/config"
)

// Quality issue strings, reported in the fixed check order
// dark / bright / size / blur.
const (
	IssueTooDark      = "too dark"
	IssueTooBright    = "too bright"
	IssueFaceTooSmall = "face too small"
	IssueTooBlurry    = "too blurry"
)

// QualityReport scores one frame against the enrollment quality gate.
// Transient; produced per sample and never stored.
type QualityReport struct {
	Valid      bool     `json:"valid"`
	Brightness float64  `json:"brightness"`
	FaceArea   float64  `json:"face_area"`
	Sharpness  float64  `json:"sharpness"`
	Issues     []string `json:"issues,omitempty"`
}

// Message joins the issues into the human-readable rejection reason.
func (r QualityReport) Message() string {
	return strings.Join(r.Issues, ", ")
}

// CheckQuality gates a frame on brightness, face size and sharpness.
// Brightness is the mean grayscale over the whole frame; sharpness is the
// variance of the Laplacian over the face crop. The gate is advisory for
// verification and mandatory for enrollment samples.
func CheckQuality(img *Image, bbox [4]float32, cfg config.QualityConfig) QualityReport {
	r := QualityReport{
		Brightness: img.MeanBrightness(),
		FaceArea:   float64((bbox[2] - bbox[0]) * (bbox[3] - bbox[1])),
	}

	face := img.Crop(int(bbox[0]), int(bbox[1]), int(bbox[2]), int(bbox[3]))
	if face != nil {
		r.Sharpness = laplacianVariance(face)
	}

	brightEnough := r.Brightness > cfg.MinBrightness && r.Brightness < cfg.MaxBrightness
	largeEnough := r.FaceArea > cfg.MinFaceArea
	sharpEnough := r.Sharpness > cfg.MinSharpness

	r.Valid = brightEnough && largeEnough && sharpEnough
	if r.Valid {
		return r
	}

	if !brightEnough {
		if r.Brightness <= cfg.MinBrightness {
			r.Issues = append(r.Issues, IssueTooDark)
		} else {
			r.Issues = append(r.Issues, IssueTooBright)
		}
	}
	if !largeEnough {
		r.Issues = append(r.Issues, IssueFaceTooSmall)
	}
	if !sharpEnough {
		r.Issues = append(r.Issues, IssueTooBlurry)
	}
	return r
}

// laplacianVariance is the blur proxy: variance of the 4-neighbour
// Laplacian response over the grayscale crop. Sharp images have strong
// edges and a high variance; defocused ones flatten out.
func laplacianVariance(img *Image) float64 {
	if img.W < 3 || img.H < 3 {
		return 0
	}

	gray := img.Gray()
	n := 0
	var sum, sumSq float64

	for y := 1; y < img.H-1; y++ {
		for x := 1; x < img.W-1; x++ {
			c := int(gray[y*img.W+x])
			lap := float64(int(gray[(y-1)*img.W+x]) +
				int(gray[(y+1)*img.W+x]) +
				int(gray[y*img.W+x-1]) +
				int(gray[y*img.W+x+1]) - 4*c)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
