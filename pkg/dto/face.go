package dto

// ImageRequest carries one base64-encoded JPEG or PNG frame, optionally
// with a data-URL prefix.
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// EnrollRequest is a guided-capture batch for one employee. The employee
// is addressed by the URL path.
type EnrollRequest struct {
	Images []string `json:"images" binding:"required"`
}

type EnrollResponse struct {
	Success   bool             `json:"success"`
	Employee  EmployeeResponse `json:"employee"`
	Samples   int              `json:"samples_count"`
	Attempted int              `json:"attempted"`
	Skipped   int              `json:"skipped"`
}

type PoseResponse struct {
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Roll     float64    `json:"roll"`
	PoseType string     `json:"pose_type"`
	BBox     [4]float32 `json:"bbox"`
}

type QualityResponse struct {
	Valid      bool     `json:"valid"`
	Brightness float64  `json:"brightness"`
	FaceArea   float64  `json:"face_area"`
	Sharpness  float64  `json:"sharpness"`
	Issues     []string `json:"issues,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// FaceDataResponse is a portable dump of one employee's stored
// embeddings, suitable for backup or transfer to another installation.
// Embeddings is the JSON-encoded nested float array used at rest.
type FaceDataResponse struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	FaceCount  int    `json:"face_count"`
	Embeddings string `json:"embeddings"`
}

type DuplicateCheckResponse struct {
	IsDuplicate bool    `json:"is_duplicate"`
	EmployeeID  string  `json:"employee_id,omitempty"`
	FullName    string  `json:"full_name,omitempty"`
	Score       float64 `json:"score,omitempty"`
}
