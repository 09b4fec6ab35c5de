package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/internal/service"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type fakeTeacherService struct {
	teacherID, subject string
	err                error
}

func (f *fakeTeacherService) SubjectsForTeacher(ctx context.Context, teacherID string) ([]models.TeacherSubject, error) {
	f.teacherID = teacherID
	return []models.TeacherSubject{{SubjectID: "sub-1", SubjectName: "Mathematics", FeedbackCount: 2}}, nil
}

func (f *fakeTeacherService) FeedbackForSubject(ctx context.Context, teacherID, subjectName string) ([]models.FeedbackEntry, error) {
	f.teacherID, f.subject = teacherID, subjectName
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	return []models.FeedbackEntry{
		{SubmittedOn: now, Ratings: models.Ratings{5, 5, 5, 5, 5}, Comments: "newer"},
		{SubmittedOn: now.Add(-time.Hour), Ratings: models.Ratings{3, 3, 3, 3, 3}},
	}, nil
}

type fakeExporter struct {
	format string
	err    error
}

func (f *fakeExporter) ExportFeedback(ctx context.Context, teacherID, subjectName, format string) (*service.ExportFile, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "feedback_mathematics.csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

func TestTeacherHandlerSubjects(t *testing.T) {
	svc := &fakeTeacherService{}
	h := NewTeacherHandler(svc, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/teacher/subjects", nil, teacherClaims())
	h.Subjects(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tch-1", svc.teacherID)
}

func TestTeacherHandlerFeedback(t *testing.T) {
	svc := &fakeTeacherService{}
	h := NewTeacherHandler(svc, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/teacher/feedback?subject=Mathematics", nil, teacherClaims())
	h.Feedback(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mathematics", svc.subject)
	env := decode(t, rec)
	assert.EqualValues(t, 2, env.Meta["count"])
	assert.Len(t, env.Meta["questions"], models.QuestionCount)

	var entries []models.FeedbackEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Equal(t, "newer", entries[0].Comments)
}

func TestTeacherHandlerFeedbackForbidden(t *testing.T) {
	h := NewTeacherHandler(&fakeTeacherService{err: appErrors.ErrForbidden}, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/teacher/feedback?subject=Physics", nil, teacherClaims())
	h.Feedback(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeacherHandlerExport(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewTeacherHandler(&fakeTeacherService{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/teacher/feedback/export?subject=Mathematics&format=csv", nil, teacherClaims())
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="feedback_mathematics.csv"`)
	assert.Equal(t, "a,b\n", rec.Body.String())

	h = NewTeacherHandler(&fakeTeacherService{}, &fakeExporter{err: appErrors.ErrNotFound})
	c, rec = newTestContext(http.MethodGet, "/teacher/feedback/export?subject=Nope", nil, teacherClaims())
	h.Export(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
