package domain

import "strings"

// Level is the normalized log severity shared by every source format.
type Level string

const (
	LevelTrace    Level = "TRACE"
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarn     Level = "WARN"
	LevelError    Level = "ERROR"
	LevelFatal    Level = "FATAL"
	LevelCritical Level = "CRITICAL"
)

// Priority returns the severity rank of a level (higher = more severe).
func (l Level) Priority() int {
	switch l {
	case LevelTrace:
		return 0
	case LevelDebug:
		return 1
	case LevelInfo:
		return 2
	case LevelWarn:
		return 3
	case LevelError:
		return 4
	case LevelFatal:
		return 5
	case LevelCritical:
		return 6
	default:
		return 2
	}
}

// ParseLevel converts a source level string to a Level. WARNING aliases to
// WARN; anything unrecognized normalizes to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}
