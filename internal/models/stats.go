package models

import "time"

// SystemStats are plain counts read at call time.
type SystemStats struct {
	StudentCount  int       `db:"student_count" json:"student_count"`
	TeacherCount  int       `db:"teacher_count" json:"teacher_count"`
	SubjectCount  int       `db:"subject_count" json:"subject_count"`
	FeedbackCount int       `db:"feedback_count" json:"feedback_count"`
	GeneratedAt   time.Time `db:"-" json:"generated_at"`
}

// SubjectAverage summarises ratings for one subject. Average is nil when the
// subject has no feedback yet.
type SubjectAverage struct {
	SubjectID        string                  `json:"subject_id"`
	FeedbackCount    int                     `json:"feedback_count"`
	Average          *float64                `json:"average"`
	QuestionAverages *[QuestionCount]float64 `json:"question_averages,omitempty"`
}

// HasData reports whether any feedback contributed to the average.
func (a SubjectAverage) HasData() bool {
	return a.FeedbackCount > 0 && a.Average != nil
}

// SubjectRatingAggregate is the raw aggregate row read from the store.
type SubjectRatingAggregate struct {
	FeedbackCount int      `db:"feedback_count"`
	Overall       *float64 `db:"overall_avg"`
	Q1            *float64 `db:"q1_avg"`
	Q2            *float64 `db:"q2_avg"`
	Q3            *float64 `db:"q3_avg"`
	Q4            *float64 `db:"q4_avg"`
	Q5            *float64 `db:"q5_avg"`
}
