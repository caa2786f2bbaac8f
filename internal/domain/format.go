package domain

// Format identifies one of the recognized source log shapes.
type Format string

const (
	FormatRenderer    Format = "RENDERER"
	FormatHTTP        Format = "HTTP"
	FormatSyncApp     Format = "SYNC_APP"
	FormatPerformance Format = "PERFORMANCE"
	FormatMountApp    Format = "MOUNT_APP"
	FormatUnknown     Format = "UNKNOWN"
)

// DetectionResult is the outcome of sampling a file. Created once per file,
// not persisted.
type DetectionResult struct {
	Format Format `json:"format"`
	// Confidence is 0.0–1.0; five independent structural signals saturate it.
	Confidence float64 `json:"confidence"`
	// Reasons lists human-readable evidence, one entry per hit category.
	Reasons []string `json:"reasons"`
}
