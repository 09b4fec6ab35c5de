package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/internal/models"
	appErrors "github.com/noah-isme/course-feedback-api/pkg/errors"
	"github.com/noah-isme/course-feedback-api/pkg/export"
)

type feedbackSource interface {
	FeedbackForSubject(ctx context.Context, teacherID, subjectName string) ([]models.FeedbackEntry, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a teacher's feedback for download.
type ExportService struct {
	source feedbackSource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(source feedbackSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{source: source, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportFeedback renders FeedbackForSubject as CSV or PDF. Authorization
// outcomes of the underlying lookup are returned unchanged.
func (s *ExportService) ExportFeedback(ctx context.Context, teacherID, subjectName, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation, "format must be csv or pdf")
	}

	entries, err := s.source.FeedbackForSubject(ctx, teacherID, subjectName)
	if err != nil {
		return nil, err
	}

	dataset := feedbackDataset(entries)
	var payload []byte
	switch format {
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Feedback: %s", strings.TrimSpace(subjectName)))
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal, "failed to render export")
	}

	s.logger.Info("feedback exported",
		zap.String("teacher_id", teacherID),
		zap.String("format", string(format)),
		zap.Int("rows", len(entries)),
	)
	return &ExportFile{
		Filename:    s.buildFilename(subjectName, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func feedbackDataset(entries []models.FeedbackEntry) export.Dataset {
	headers := make([]string, 0, models.QuestionCount+3)
	widths := make([]float64, 0, models.QuestionCount+3)
	headers = append(headers, "Submitted On")
	widths = append(widths, 2)
	for _, q := range models.Questions {
		headers = append(headers, q)
		widths = append(widths, 1.5)
	}
	headers = append(headers, "Average", "Comments")
	widths = append(widths, 1, 5)

	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		row := map[string]string{
			"Submitted On": entry.SubmittedOn.UTC().Format(time.RFC3339),
			"Average":      strconv.FormatFloat(entry.Ratings.Mean(), 'f', 2, 64),
			"Comments":     entry.Comments,
		}
		for i, q := range models.Questions {
			row[q] = strconv.Itoa(entry.Ratings[i])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows, Widths: widths}
}

func (s *ExportService) buildFilename(subjectName string, format export.Format) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("feedback_%s_%s.%s", sanitizeFilename(strings.ToLower(strings.TrimSpace(subjectName))), timestamp, format)
}

const maxFilenameRunes = 100

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "", "__", "_")
	result := replacer.Replace(raw)
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		return string(runes[:maxFilenameRunes])
	}
	return result
}
