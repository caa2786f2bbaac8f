package analyze

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mzorec/logsift/internal/domain"
)

// DefaultPatterns returns the built-in detection rules for common failure
// signatures. Callers typically replace or extend these with patterns from
// their own knowledge base.
func DefaultPatterns() []domain.DetectionPattern {
	return []domain.DetectionPattern{
		{
			ID: "oom", Name: "Out of memory",
			Type: domain.PatternKeyword, Value: "OutOfMemoryError",
			Severity: domain.SeverityCritical, Category: "resources",
		},
		{
			ID: "conn-refused", Name: "Connection refused",
			Type: domain.PatternKeyword, Value: "connection refused",
			Severity: domain.SeverityHigh, Category: "network",
		},
		{
			ID: "conn-reset", Name: "Connection reset",
			Type: domain.PatternKeyword, Value: "connection reset by peer",
			Severity: domain.SeverityHigh, Category: "network",
		},
		{
			ID: "nil-deref", Name: "Nil pointer dereference",
			Type: domain.PatternRegex, Value: `nil pointer|null pointer|NullPointerException|cannot read propert`,
			Severity: domain.SeverityHigh, Category: "crash",
		},
		{
			ID: "timeout", Name: "Operation timed out",
			Type: domain.PatternRegex, Value: `\btime[d ]?out\b|deadline exceeded`,
			Severity: domain.SeverityMedium, Category: "latency",
		},
		{
			ID: "perm-denied", Name: "Permission denied",
			Type: domain.PatternKeyword, Value: "permission denied",
			Severity: domain.SeverityMedium, Category: "access",
		},
		{
			ID: "disk-full", Name: "Disk full",
			Type: domain.PatternRegex, Value: `no space left on device|disk full`,
			Severity: domain.SeverityCritical, Category: "resources",
		},
	}
}

// LoadPatterns reads detection patterns from a YAML or JSON file with a
// top-level "patterns" list.
func LoadPatterns(path string) ([]domain.DetectionPattern, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}

	var patterns []domain.DetectionPattern
	if err := v.UnmarshalKey("patterns", &patterns); err != nil {
		return nil, fmt.Errorf("parse patterns file: %w", err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("patterns file %s contains no patterns", path)
	}
	return patterns, nil
}
