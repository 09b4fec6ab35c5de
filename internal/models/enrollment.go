package models

// Enrollment links one student to one subject.
type Enrollment struct {
	ID        string `db:"enrollment_id" json:"id"`
	StudentID string `db:"user_id" json:"student_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

// EnrollRequest is the admin payload for enrolling a student.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	SubjectID string `json:"subject_id" validate:"required,uuid"`
}
