package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	appErrors "github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/errors"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/export"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/pkg/storage"
)

// ExportService generates downloadable tutor quality reports. Each
// report bundles the tutor's current window statistics, latest score
// snapshot and open flags, rendered as CSV or PDF and served through
// signed download tokens.
type ExportService struct {
	stats   *StatsService
	scores  *ScoreService
	flags   *FlagService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(
	stats *StatsService,
	scores *ScoreService,
	flags *FlagService,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		stats:   stats,
		scores:  scores,
		flags:   flags,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		signer:  signer,
		logger:  logger,
	}
}

// TutorReport renders, stores and signs a quality report for one tutor.
func (s *ExportService) TutorReport(ctx context.Context, tutorID string, format models.ReportFormat) (*models.ReportArtifact, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	tutorStats, _, err := s.stats.TutorStats(ctx, tutorID, time.Time{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute tutor stats")
	}

	// A tutor without a score snapshot still gets a report.
	score, _, err := s.scores.Latest(ctx, tutorID)
	if err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrNotFound.Code {
			return nil, err
		}
		score = nil
	}

	openFlags, err := s.flags.OpenByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	dataset := buildReportDataset(tutorStats, score, openFlags)

	var payload []byte
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Tutor Quality Report %s", tutorID))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	generatedAt := time.Now().UTC()
	fileName := path.Join("tutors", fmt.Sprintf("%s-%d.%s", tutorID, generatedAt.Unix(), format))
	if _, err := s.storage.Save(fileName, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	reportID := uuid.NewString()
	token, expiresAt, err := s.signer.Generate(reportID, fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report token")
	}

	s.logger.Info("tutor report generated",
		zap.String("tutor_id", tutorID),
		zap.String("format", string(format)),
		zap.Int("size_bytes", len(payload)))

	return &models.ReportArtifact{
		TutorID:       tutorID,
		Format:        format,
		FileName:      fileName,
		SizeBytes:     len(payload),
		DownloadToken: token,
		ExpiresAt:     expiresAt,
		GeneratedAt:   generatedAt,
	}, nil
}

// Open validates a download token and returns the stored report file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
	}
	return file, path.Base(relPath), nil
}

// CleanupExpired removes report files older than the provided TTL.
func (s *ExportService) CleanupExpired(ttl time.Duration) (int, error) {
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return 0, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}

func buildReportDataset(tutorStats *models.TutorStats, score *models.TutorScore, openFlags []models.Flag) export.Dataset {
	summary := []export.KV{
		{Key: "Tutor", Value: tutorStats.TutorID},
		{Key: "Window", Value: fmt.Sprintf("%s to %s", tutorStats.WindowStart.Format("2006-01-02"), tutorStats.WindowEnd.Format("2006-01-02"))},
		{Key: "Total Sessions", Value: strconv.Itoa(tutorStats.TotalSessions)},
		{Key: "No-Show Rate", Value: formatRate(tutorStats.NoShowRate)},
		{Key: "Late Rate", Value: formatRate(tutorStats.LateRate)},
		{Key: "Early-End Rate", Value: formatRate(tutorStats.EarlyEndRate)},
		{Key: "Reschedule Rate", Value: formatRate(tutorStats.RescheduleRate)},
		{Key: "Avg Student Rating", Value: formatAvg(tutorStats.AvgStudentRating)},
	}
	if score != nil {
		summary = append(summary,
			export.KV{Key: "Overall Score", Value: strconv.Itoa(score.OverallScore)},
			export.KV{Key: "Confidence", Value: fmt.Sprintf("%.2f", score.ConfidenceScore)},
		)
	}

	headers := []string{"Flag", "Severity", "Title", "Confidence", "Raised At"}
	rows := make([]map[string]string, 0, len(openFlags))
	for _, flag := range openFlags {
		rows = append(rows, map[string]string{
			"Flag":       string(flag.FlagType),
			"Severity":   flag.Severity.String(),
			"Title":      flag.Title,
			"Confidence": fmt.Sprintf("%.2f", flag.Confidence),
			"Raised At":  flag.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return export.Dataset{Summary: summary, Headers: headers, Rows: rows}
}

func formatRate(rate *float64) string {
	if rate == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *rate*100)
}

func formatAvg(avg *float64) string {
	if avg == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *avg)
}
