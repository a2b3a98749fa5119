package dto

import "github.com/google/uuid"

type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type EmployeeResponse struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Active     bool      `json:"active"`
	FaceCount  int       `json:"face_count"`
	CreatedAt  string    `json:"created_at"`
}
