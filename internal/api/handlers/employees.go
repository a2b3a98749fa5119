package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/attend/internal/models"
	"github.com/your-org/attend/internal/storage"
	"github.com/your-org/attend/pkg/dto"
)

type EmployeeHandler struct {
	db *storage.PostgresStore
}

func NewEmployeeHandler(db *storage.PostgresStore) *EmployeeHandler {
	return &EmployeeHandler{db: db}
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.db.GetEmployeeByBadge(c.Request.Context(), req.EmployeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "employee_id already exists"})
		return
	}

	emp, err := h.db.CreateEmployee(c.Request.Context(), req.EmployeeID, req.FullName, req.Department, req.Position)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, employeeResponse(emp, 0))
}

func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.db.ListEmployees(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		count, _ := h.db.CountEmbeddings(c.Request.Context(), employees[i].ID)
		resp = append(resp, employeeResponse(&employees[i], count))
	}

	c.JSON(http.StatusOK, gin.H{"employees": resp, "total": len(resp)})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
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

	count, _ := h.db.CountEmbeddings(c.Request.Context(), id)
	c.JSON(http.StatusOK, employeeResponse(emp, count))
}

func employeeResponse(e *models.Employee, faceCount int) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Department: e.Department,
		Position:   e.Position,
		Active:     e.Active,
		FaceCount:  faceCount,
		CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
