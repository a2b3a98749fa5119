package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/pkg/dto"
)

// FaceDataStore is the storage surface the export endpoint reads from.
type FaceDataStore interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	GetEmbeddings(ctx context.Context, employeeID uuid.UUID) ([][]float32, error)
}

type FaceDataHandler struct {
	db FaceDataStore
}

func NewFaceDataHandler(db FaceDataStore) *FaceDataHandler {
	return &FaceDataHandler{db: db}
}

// Export returns the employee's stored embeddings as portable text, in
// insertion order. An employee with no face data exports an empty list.
func (h *FaceDataHandler) Export(c *gin.Context) {
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

	embeddings, err := h.db.GetEmbeddings(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	encoded, err := models.EncodeEmbeddings(embeddings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FaceDataResponse{
		EmployeeID: emp.EmployeeID,
		FullName:   emp.FullName,
		FaceCount:  len(embeddings),
		Embeddings: encoded,
	})
}
