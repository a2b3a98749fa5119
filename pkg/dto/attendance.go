package dto

import "github.com/google/uuid"

// CheckRequest is a face-verified attendance check. Direction is optional;
// when empty the server toggles based on the employee's last event.
type CheckRequest struct {
	Image     string `json:"image" binding:"required"`
	Direction string `json:"direction"` // check_in or check_out
}

type CheckResponse struct {
	Success   bool        `json:"success"`
	Employee  string      `json:"employee_id"`
	FullName  string      `json:"full_name"`
	Direction string      `json:"direction"`
	Score     float64     `json:"similarity_score"`
	BBox      *[4]float32 `json:"bbox,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type AttendanceEventResponse struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Direction  string    `json:"direction"`
	Score      float32   `json:"score"`
	Timestamp  string    `json:"timestamp"`
}

// WSEvent is a WebSocket message for real-time attendance delivery.
type WSEvent struct {
	Type      string  `json:"type"` // checked_in, checked_out
	BadgeCode string  `json:"badge_code"`
	FullName  string  `json:"full_name"`
	Score     float32 `json:"score"`
	Timestamp string  `json:"timestamp"`
}
