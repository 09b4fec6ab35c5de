package models

import "time"

// QuestionCount is the fixed number of rated criteria.
const QuestionCount = 5

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Questions are the criteria students rate, in column order q1..q5.
var Questions = [QuestionCount]string{
	"Clarity of teaching",
	"Course content",
	"Effectiveness of teaching methods",
	"Instructor availability for doubts",
	"Overall learning experience",
}

// Ratings holds one score per question.
type Ratings [QuestionCount]int

// Mean returns the average of the five scores.
func (r Ratings) Mean() float64 {
	sum := 0
	for _, v := range r {
		sum += v
	}
	return float64(sum) / QuestionCount
}

// Feedback is the single, write-once submission for an enrollment.
type Feedback struct {
	ID           string    `db:"feedback_id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Q1           int       `db:"q1" json:"-"`
	Q2           int       `db:"q2" json:"-"`
	Q3           int       `db:"q3" json:"-"`
	Q4           int       `db:"q4" json:"-"`
	Q5           int       `db:"q5" json:"-"`
	Comments     string    `db:"comments" json:"comments"`
	SubmittedOn  time.Time `db:"submitted_on" json:"submitted_on"`
}

// Ratings collects the question columns.
func (f Feedback) Ratings() Ratings {
	return Ratings{f.Q1, f.Q2, f.Q3, f.Q4, f.Q5}
}

// SetRatings spreads r over the question columns.
func (f *Feedback) SetRatings(r Ratings) {
	f.Q1, f.Q2, f.Q3, f.Q4, f.Q5 = r[0], r[1], r[2], r[3], r[4]
}

// FeedbackEntry is the anonymous view teachers get of a submission.
type FeedbackEntry struct {
	SubmittedOn time.Time `json:"submitted_on"`
	Ratings     Ratings   `json:"ratings"`
	Comments    string    `json:"comments"`
}

// Entry strips enrollment identity from f.
func (f Feedback) Entry() FeedbackEntry {
	return FeedbackEntry{SubmittedOn: f.SubmittedOn, Ratings: f.Ratings(), Comments: f.Comments}
}

// SubmitFeedbackRequest is the student payload. Ratings keep the length that
// was sent; see Scores.
type SubmitFeedbackRequest struct {
	Ratings  []int  `json:"ratings" validate:"dive,min=1,max=5"`
	Comments string `json:"comments"`
}

// Scores returns the ratings in question order. ok is false unless exactly
// one rating per question was sent.
func (r SubmitFeedbackRequest) Scores() (scores Ratings, ok bool) {
	if len(r.Ratings) != QuestionCount {
		return scores, false
	}
	copy(scores[:], r.Ratings)
	return scores, true
}
