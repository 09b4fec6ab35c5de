package models

import "time"

// Subject is a course owned by exactly one teacher.
type Subject struct {
	ID        string    `db:"subject_id" json:"id"`
	Name      string    `db:"subject_name" json:"name"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentSubject is a row of a student's enrolled subjects.
type StudentSubject struct {
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	HasFeedback bool   `db:"has_feedback" json:"has_feedback"`
}

// TeacherSubject is a row of a teacher's subjects with feedback volume.
type TeacherSubject struct {
	SubjectID     string `db:"subject_id" json:"subject_id"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	FeedbackCount int    `db:"feedback_count" json:"feedback_count"`
}

// CreateSubjectRequest is the admin payload for a new subject.
type CreateSubjectRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
}

// ReassignSubjectRequest moves a subject to another teacher.
type ReassignSubjectRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
}
