package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance check directions.
const (
	CheckIn  = "check_in"
	CheckOut = "check_out"
)

// AttendanceEvent records one successful face-verified check.
type AttendanceEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EmployeeID  uuid.UUID `json:"employee_id" db:"employee_id"`
	Direction   string    `json:"direction" db:"direction"`
	Score       float32   `json:"score" db:"score"`
	SnapshotKey string    `json:"snapshot_key" db:"snapshot_key"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AttendanceMessage is the message published to NATS after a verified check.
type AttendanceMessage struct {
	EventID     uuid.UUID `json:"event_id"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	BadgeCode   string    `json:"badge_code"`
	FullName    string    `json:"full_name"`
	Department  string    `json:"department"`
	Direction   string    `json:"direction"`
	Score       float32   `json:"score"`
	SnapshotKey string    `json:"snapshot_key"`
	Timestamp   time.Time `json:"timestamp"`
}
