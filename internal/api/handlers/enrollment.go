package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/attend/internal/face"
	"github.com/your-org/attend/internal/storage"
	"github.com/your-org/attend/internal/vision"
	"github.com/your-org/attend/pkg/dto"
)

type EnrollmentHandler struct {
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	enroller *face.Enroller
}

func NewEnrollmentHandler(db *storage.PostgresStore, minio *storage.MinIOStore, enroller *face.Enroller) *EnrollmentHandler {
	return &EnrollmentHandler{db: db, minio: minio, enroller: enroller}
}

// Enroll runs a guided-capture batch for one employee. Every image in the
// batch must clear the quality gate; frames with no detectable face are
// skipped, and at least the configured minimum of valid samples must remain.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image required"})
		return
	}

	emp, err := h.db.GetEmployee(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	samples := make([]face.Sample, 0, len(req.Images))
	rawFrames := make([][]byte, 0, len(req.Images))
	for i, encoded := range req.Images {
		raw, img, err := decodeImageBytes(encoded)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("image %d: %v", i+1, err),
			})
			return
		}
		samples = append(samples, face.Sample{Image: img})
		rawFrames = append(rawFrames, raw)
	}

	result, err := h.enroller.Enroll(c.Request.Context(), *emp, samples)
	if err != nil {
		h.writeEnrollError(c, err)
		return
	}

	// Archive the committed batch's source frames. Failures are logged,
	// never surfaced: the embeddings are already stored.
	batchID := uuid.New().String()
	for i, raw := range rawFrames {
		key := fmt.Sprintf("enroll/%s/%s_%02d.jpg", emp.EmployeeID, batchID, i)
		if err := h.minio.PutObject(c.Request.Context(), key, raw, "image/jpeg"); err != nil {
			slog.Warn("store enrollment frame", "key", key, "error", err)
			break
		}
	}

	count, _ := h.db.CountEmbeddings(c.Request.Context(), id)
	c.JSON(http.StatusOK, dto.EnrollResponse{
		Success:   true,
		Employee:  employeeResponse(emp, count),
		Samples:   result.Samples,
		Attempted: result.Attempted,
		Skipped:   result.Skipped,
	})
}

func (h *EnrollmentHandler) writeEnrollError(c *gin.Context, err error) {
	var (
		qualityErr      *face.QualityError
		duplicateErr    *face.DuplicateError
		insufficientErr *face.InsufficientError
	)
	switch {
	case errors.As(err, &qualityErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  qualityErr.Error(),
			"sample": qualityErr.SampleIndex + 1,
			"issues": qualityErr.Report.Issues,
		})
	case errors.As(err, &duplicateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":       duplicateErr.Error(),
			"employee_id": duplicateErr.BadgeCode,
			"full_name":   duplicateErr.FullName,
			"score":       duplicateErr.Score,
		})
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     insufficientErr.Error(),
			"valid":     insufficientErr.Valid,
			"attempted": insufficientErr.Attempted,
			"required":  insufficientErr.Required,
		})
	case errors.Is(err, vision.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recognition models unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ClearFace removes every stored embedding for the employee so they can be
// re-enrolled from scratch.
func (h *EnrollmentHandler) ClearFace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	emp, err := h.db.GetEmployee(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	if err := h.enroller.ClearFaceData(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
