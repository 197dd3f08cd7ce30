package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/export"
)

// Supported history export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var (
	historyHeaders = []string{"When", "User", "Action", "Old", "New", "From", "To", "Comment"}
	historyWidths  = []float64{2.2, 1.6, 2, 2, 2, 1.4, 1.4, 4}
)

type historySource interface {
	History(ctx context.Context, taskID string) (*models.Task, []models.TaskHistory, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders task audit trails into downloadable documents.
type ExportService struct {
	history historySource
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(history historySource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{history: history, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// TaskHistory renders the history of a task in the requested format.
func (s *ExportService) TaskHistory(ctx context.Context, taskID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}

	task, entries, err := s.history.History(ctx, taskID)
	if err != nil {
		return nil, err
	}
	dataset := historyDataset(entries)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("History: %s", task.Title))
		contentType = "application/pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, internalError(err, "failed to render history export")
	}

	s.logger.Debug("task history exported", zap.String("task_id", taskID), zap.String("format", format), zap.Int("rows", len(entries)))
	return &ExportFile{
		Filename:    buildExportFilename(task, format, s.now().UTC()),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func historyDataset(entries []models.TaskHistory) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"When":    entry.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"User":    entry.Username,
			"Action":  entry.Action,
			"Old":     stringOr(entry.OldValue, ""),
			"New":     stringOr(entry.NewValue, ""),
			"From":    deptString(entry.FromDepartment),
			"To":      deptString(entry.ToDepartment),
			"Comment": stringOr(entry.Comment, ""),
		})
	}
	return export.Dataset{Headers: historyHeaders, Rows: rows, Widths: historyWidths}
}

func deptString(dept *models.Department) string {
	if dept == nil {
		return ""
	}
	return string(*dept)
}

func buildExportFilename(task *models.Task, format string, at time.Time) string {
	return fmt.Sprintf("task_%s_history_%s.%s", sanitizeFilename(task.ID), at.Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
