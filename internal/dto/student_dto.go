package dto

import "github.com/noah-isme/student-records-api/internal/models"

// StudentRequest is the payload accepted by create and update. Update ignores
// AcademicID; the path parameter is authoritative there.
type StudentRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=100"`
	AcademicID string `json:"academic_id" validate:"required,max=50"`
}

// StudentResponse is the wire representation of a student record.
type StudentResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AcademicID string `json:"academic_id"`
}

// NewStudentResponse maps a persisted student onto the response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:         student.ID,
		Name:       student.Name,
		Email:      student.Email,
		AcademicID: student.AcademicID,
	}
}
