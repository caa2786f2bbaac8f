package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mzorec/logsift/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Log level styles
	Trace    lipgloss.Style
	Debug    lipgloss.Style
	Info     lipgloss.Style
	Warn     lipgloss.Style
	Error    lipgloss.Style
	Fatal    lipgloss.Style
	Critical lipgloss.Style

	// Component styles
	Timestamp lipgloss.Style
	Service   lipgloss.Style
	Message   lipgloss.Style

	// Report styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
}{
	// Log levels - distinctive colors
	Trace:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),                            // Dark gray
	Debug:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),                            // Gray
	Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),                             // Cyan
	Warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),                            // Orange
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),                 // Red bold
	Fatal:    lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Underline(true), // Magenta bold underline
	Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Underline(true), // Magenta bold underline

	// Components
	Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")), // Gray
	Service:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),  // Blue
	Message:   lipgloss.NewStyle(),

	// Report
	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red

	// TUI
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Selected:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("39")),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

// LevelStyle returns the appropriate style for a log level string
func LevelStyle(level string) lipgloss.Style {
	switch domain.Level(level) {
	case domain.LevelTrace:
		return Styles.Trace
	case domain.LevelDebug:
		return Styles.Debug
	case domain.LevelInfo:
		return Styles.Info
	case domain.LevelWarn:
		return Styles.Warn
	case domain.LevelError:
		return Styles.Error
	case domain.LevelFatal:
		return Styles.Fatal
	case domain.LevelCritical:
		return Styles.Critical
	default:
		return Styles.Info
	}
}

// LevelIndicator returns a styled level indicator
func LevelIndicator(level string) string {
	style := LevelStyle(level)
	switch domain.Level(level) {
	case domain.LevelTrace:
		return style.Render("TRC")
	case domain.LevelDebug:
		return style.Render("DBG")
	case domain.LevelInfo:
		return style.Render("INF")
	case domain.LevelWarn:
		return style.Render("WRN")
	case domain.LevelError:
		return style.Render("ERR")
	case domain.LevelFatal:
		return style.Render("FTL")
	case domain.LevelCritical:
		return style.Render("CRT")
	default:
		return style.Render("???")
	}
}

// SeverityStyle returns a style for an issue severity
func SeverityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return Styles.Danger
	case domain.SeverityHigh:
		return Styles.Error
	case domain.SeverityMedium:
		return Styles.Warning
	default:
		return Styles.Label
	}
}

// StatusText returns styled status text for an analysis
func StatusText(issueCount, criticalCount int) string {
	if criticalCount > 0 {
		return Styles.Danger.Render("CRITICAL ISSUES DETECTED")
	}
	if issueCount > 0 {
		return Styles.Warning.Render("ISSUES DETECTED")
	}
	return Styles.Success.Render("OK")
}
