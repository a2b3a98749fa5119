package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/attend/internal/config"
	"github.com/your-org/attend/internal/face"
	"github.com/your-org/attend/internal/vision"
	"github.com/your-org/attend/pkg/dto"
)

// FaceHandler exposes stateless face checks used by the capture UI:
// pose classification, quality reporting, and duplicate pre-check.
type FaceHandler struct {
	engine     *vision.Engine
	matcher    *face.Matcher
	qualityCfg config.QualityConfig
}

func NewFaceHandler(engine *vision.Engine, matcher *face.Matcher, qualityCfg config.QualityConfig) *FaceHandler {
	return &FaceHandler{engine: engine, matcher: matcher, qualityCfg: qualityCfg}
}

func (h *FaceHandler) CheckPose(c *gin.Context) {
	var req dto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.DetectPose(img)
	if err != nil {
		h.writeVisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PoseResponse{
		Yaw:      result.Yaw,
		Pitch:    result.Pitch,
		Roll:     result.Roll,
		PoseType: string(result.Type),
		BBox:     result.BBox,
	})
}

func (h *FaceHandler) CheckQuality(c *gin.Context) {
	var req dto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ext, err := h.engine.Extract(img)
	if err != nil {
		if errors.Is(err, vision.ErrNoFaceDetected) {
			c.JSON(http.StatusOK, dto.QualityResponse{
				Valid:   false,
				Issues:  []string{"no face detected"},
				Message: "no face detected",
			})
			return
		}
		h.writeVisionError(c, err)
		return
	}

	report := vision.CheckQuality(img, ext.BBox, h.qualityCfg)
	c.JSON(http.StatusOK, dto.QualityResponse{
		Valid:      report.Valid,
		Brightness: report.Brightness,
		FaceArea:   report.FaceArea,
		Sharpness:  report.Sharpness,
		Issues:     report.Issues,
		Message:    report.Message(),
	})
}

// CheckDuplicate reports whether the face in the frame already matches an
// enrolled employee. Used before registration to catch double enrollment.
func (h *FaceHandler) CheckDuplicate(c *gin.Context) {
	var req dto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matcher.Verify(c.Request.Context(), img)
	if err != nil {
		h.writeVisionError(c, err)
		return
	}
	if match == nil {
		c.JSON(http.StatusOK, dto.DuplicateCheckResponse{IsDuplicate: false})
		return
	}

	c.JSON(http.StatusOK, dto.DuplicateCheckResponse{
		IsDuplicate: true,
		EmployeeID:  match.Employee.EmployeeID,
		FullName:    match.Employee.FullName,
		Score:       match.Score,
	})
}

func (h *FaceHandler) writeVisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vision.ErrNoFaceDetected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no face detected"})
	case errors.Is(err, vision.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recognition models unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
