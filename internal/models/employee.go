package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Employee is an enrolled identity. Embeddings are appended in enrollment
// order and never reordered or deduplicated; an employee may hold several
// embeddings of the same face taken at different poses and lighting.
type Employee struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID string    `json:"employee_id" db:"employee_id"` // human-facing badge code
	FullName   string    `json:"full_name" db:"full_name"`
	Department string    `json:"department" db:"department"`
	Position   string    `json:"position" db:"position"`
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FaceEmbedding is one stored enrollment sample. Immutable after creation;
// embeddings are only ever deleted en masse when an employee's face data is
// cleared.
type FaceEmbedding struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Embedding  []float32 `json:"embedding" db:"embedding"`
	Quality    float32   `json:"quality" db:"quality"`
	SourceKey  string    `json:"source_key" db:"source_key"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// EnrolledIdentity is the read-model the matcher scans: an employee together
// with its full ordered embedding list.
type EnrolledIdentity struct {
	Employee   Employee
	Embeddings [][]float32
}

// EncodeEmbeddings serializes an embedding list as nested JSON arrays,
// the interchange format used for export and import of an employee's face
// data through a plain text field.
func EncodeEmbeddings(embeddings [][]float32) (string, error) {
	data, err := json.Marshal(embeddings)
	if err != nil {
		return "", fmt.Errorf("encode embeddings: %w", err)
	}
	return string(data), nil
}

// DecodeEmbeddings parses the nested-array text format back into vectors.
// An empty string decodes to an empty list.
func DecodeEmbeddings(text string) ([][]float32, error) {
	if text == "" {
		return nil, nil
	}
	var embeddings [][]float32
	if err := json.Unmarshal([]byte(text), &embeddings); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	return embeddings, nil
}
