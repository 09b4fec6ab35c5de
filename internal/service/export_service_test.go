package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-feedback-api/internal/models"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
)

type stubFeedbackSource struct {
	entries []models.FeedbackEntry
	err     error
}

func (s stubFeedbackSource) FeedbackForSubject(ctx context.Context, teacherID, subjectName string) ([]models.FeedbackEntry, error) {
	return s.entries, s.err
}

func newExportServiceForTest(source feedbackSource) *ExportService {
	svc := NewExportService(source, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC) }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	source := stubFeedbackSource{entries: []models.FeedbackEntry{
		{SubmittedOn: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), Ratings: models.Ratings{4, 5, 4, 5, 4}, Comments: "Great"},
	}}
	svc := newExportServiceForTest(source)

	file, err := svc.ExportFeedback(context.Background(), "tea-1", "Mathematics I", "csv")
	require.NoError(t, err)
	assert.Equal(t, "feedback_mathematics_i_20260504_030201.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Submitted On", records[0][0])
	assert.Equal(t, models.Questions[0], records[0][1])
	assert.Equal(t, []string{"2026-05-01T08:00:00Z", "4", "5", "4", "5", "4", "4.40", "Great"}, records[1])
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(stubFeedbackSource{entries: []models.FeedbackEntry{}})

	file, err := svc.ExportFeedback(context.Background(), "tea-1", "Physics", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServicePropagatesAuthorization(t *testing.T) {
	svc := newExportServiceForTest(stubFeedbackSource{err: appErrors.Clone(appErrors.ErrForbidden, "")})

	_, err := svc.ExportFeedback(context.Background(), "tea-1", "Physics", "csv")
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ExportFeedback(context.Background(), "tea-1", "Physics", "docx")
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))

	long := sanitizeFilename(strings.Repeat("ü", 150))
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, maxFilenameRunes, utf8.RuneCountInString(long))
}
