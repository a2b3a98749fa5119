package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/attend/internal/face"
	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/queue"
	"github.com/your-org/attend/internal/storage"
	"github.com/your-org/attend/pkg/dto"
)

type AttendanceHandler struct {
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	producer *queue.Producer
	matcher  *face.Matcher
	faceH    *FaceHandler
}

func NewAttendanceHandler(db *storage.PostgresStore, minio *storage.MinIOStore, producer *queue.Producer, matcher *face.Matcher, faceH *FaceHandler) *AttendanceHandler {
	return &AttendanceHandler{db: db, minio: minio, producer: producer, matcher: matcher, faceH: faceH}
}

// Check verifies the face in the frame against the enrolled population and,
// on a match, records an attendance event. Direction defaults to the
// opposite of the employee's last event.
func (h *AttendanceHandler) Check(c *gin.Context) {
	var req dto.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Direction != "" && req.Direction != models.CheckIn && req.Direction != models.CheckOut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be check_in or check_out"})
		return
	}

	raw, img, err := decodeImageBytes(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matcher.Verify(c.Request.Context(), img)
	if err != nil {
		h.faceH.writeVisionError(c, err)
		return
	}
	if match == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "face not recognized",
		})
		return
	}

	direction := req.Direction
	if direction == "" {
		direction = models.CheckIn
		last, err := h.db.LastAttendanceEvent(c.Request.Context(), match.Employee.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if last != nil && last.Direction == models.CheckIn {
			direction = models.CheckOut
		}
	}

	now := time.Now().UTC()

	// Snapshot failures must not block the check itself.
	snapshotKey := "snapshots/" + match.Employee.EmployeeID + "/" + uuid.New().String() + ".jpg"
	if err := h.minio.PutObject(c.Request.Context(), snapshotKey, raw, "image/jpeg"); err != nil {
		slog.Warn("store snapshot failed", "error", err)
		snapshotKey = ""
	}

	event := &models.AttendanceEvent{
		ID:          uuid.New(),
		EmployeeID:  match.Employee.ID,
		Direction:   direction,
		Score:       float32(match.Score),
		SnapshotKey: snapshotKey,
		Timestamp:   now,
	}
	if err := h.db.CreateAttendanceEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	msg := models.AttendanceMessage{
		EventID:     event.ID,
		EmployeeID:  match.Employee.ID,
		BadgeCode:   match.Employee.EmployeeID,
		FullName:    match.Employee.FullName,
		Department:  match.Employee.Department,
		Direction:   direction,
		Score:       float32(match.Score),
		SnapshotKey: snapshotKey,
		Timestamp:   now,
	}
	if err := h.producer.PublishAttendance(c.Request.Context(), match.Employee.EmployeeID, msg); err != nil {
		slog.Error("publish attendance failed", "error", err)
	}

	c.JSON(http.StatusOK, dto.CheckResponse{
		Success:   true,
		Employee:  match.Employee.EmployeeID,
		FullName:  match.Employee.FullName,
		Direction: direction,
		Score:     match.Score,
		BBox:      match.BBox,
		Timestamp: now.Format(time.RFC3339),
	})
}

// List returns recent attendance events, optionally filtered by employee.
func (h *AttendanceHandler) List(c *gin.Context) {
	var employeeID *uuid.UUID
	if idStr := c.Query("employee_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee_id"})
			return
		}
		employeeID = &id
	}

	limit := 100
	if limStr := c.Query("limit"); limStr != "" {
		if v, err := strconv.Atoi(limStr); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	events, err := h.db.ListAttendanceEvents(c.Request.Context(), employeeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AttendanceEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, dto.AttendanceEventResponse{
			ID:         ev.ID,
			EmployeeID: ev.EmployeeID,
			Direction:  ev.Direction,
			Score:      ev.Score,
			Timestamp:  ev.Timestamp.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": resp, "total": len(resp)})
}
