package models

import "time"

// ReportFormat selects the rendering for an exported tutor report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid returns true when the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportArtifact describes a generated tutor quality report and the
// signed token required to download it.
type ReportArtifact struct {
	TutorID       string       `json:"tutor_id"`
	Format        ReportFormat `json:"format"`
	FileName      string       `json:"file_name"`
	SizeBytes     int          `json:"size_bytes"`
	DownloadToken string       `json:"download_token"`
	ExpiresAt     time.Time    `json:"expires_at"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

// SystemMetrics represents system-level instrumentation snapshots.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	EvaluationsTotal         uint64    `json:"evaluations_total"`
	FlagsRaisedTotal         uint64    `json:"flags_raised_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
