package exports

import "time"

// Export job statuses. processing is the sole initial state; complete and
// failed are terminal.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Supported export formats.
const (
	FormatEPUB = "epub"
	FormatPDF  = "pdf"
)

// ExportJob tracks one export request for a book. Status transitions are
// monotonic: a terminal job never becomes processing again.
type ExportJob struct {
	ID           string         `json:"id"`
	BookID       string         `json:"book_id"`
	UserID       string         `json:"-"`
	Format       string         `json:"format"`
	Status       string         `json:"status"`
	Settings     map[string]any `json:"settings,omitempty"`
	FileURL      string         `json:"file_url,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// ValidFormat reports whether the format is supported.
func ValidFormat(format string) bool {
	return format == FormatEPUB || format == FormatPDF
}

// contentTypeFor maps an export format to the artifact MIME type.
func contentTypeFor(format string) string {
	switch format {
	case FormatEPUB:
		return "application/epub+zip"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
