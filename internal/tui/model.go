package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/output"
)

var (
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230")).Bold(true)
)

// Model represents the TUI state
type Model struct {
	records     []*domain.Record
	filteredIdx []int
	content     string
	viewport    viewport.Model
	textinput   textinput.Model
	recordChan  <-chan *domain.Record
	errChan     <-chan error
	width       int
	height      int
	ready       bool
	searching   bool
	searchQuery string
	levelFilter domain.Level
	paused      bool
	follow      bool
	showDetails bool
	stats       Stats
	fileName    string
	format      domain.Format
}

// Stats holds record statistics
type Stats struct {
	Total     int
	Errors    int
	Criticals int
}

// RecordMsg is a message containing a new normalized record
type RecordMsg *domain.Record

// ErrMsg is a message containing an error
type ErrMsg error

// TickMsg triggers periodic updates
type TickMsg time.Time

// New creates a new TUI model
func New(fileName string, format domain.Format, recordChan <-chan *domain.Record, errChan <-chan error) Model {
	ti := textinput.New()
	ti.Placeholder = "Search records..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		records:     make([]*domain.Record, 0, 1000),
		filteredIdx: make([]int, 0, 1000),
		textinput:   ti,
		recordChan:  recordChan,
		errChan:     errChan,
		levelFilter: domain.LevelTrace, // Show all by default
		follow:      true,
		fileName:    fileName,
		format:      format,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForRecord(m.recordChan),
		waitForError(m.errChan),
		tickCmd(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc":
				m.searching = false
				m.textinput.Blur()
				m.searchQuery = ""
				m.updateFilter()
			case "enter":
				m.searching = false
				m.textinput.Blur()
				m.searchQuery = m.textinput.Value()
				m.updateFilter()
			default:
				m.textinput, cmd = m.textinput.Update(msg)
				cmds = append(cmds, cmd)
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "/":
				m.searching = true
				m.textinput.Focus()
				return m, textinput.Blink
			case "esc":
				if m.searchQuery != "" {
					m.searchQuery = ""
					m.textinput.SetValue("")
					m.updateFilter()
				}
			case "p", " ":
				m.paused = !m.paused
			case "f":
				m.follow = !m.follow
				if m.follow {
					m.viewport.GotoBottom()
				}
			case "d":
				m.showDetails = !m.showDetails
				m.updateFilter()
			case "c":
				m.records = m.records[:0]
				m.filteredIdx = m.filteredIdx[:0]
				m.stats = Stats{}
				m.content = ""
				m.updateViewport()
			case "1":
				m.levelFilter = domain.LevelTrace
				m.updateFilter()
			case "2":
				m.levelFilter = domain.LevelDebug
				m.updateFilter()
			case "3":
				m.levelFilter = domain.LevelInfo
				m.updateFilter()
			case "4":
				m.levelFilter = domain.LevelWarn
				m.updateFilter()
			case "5":
				m.levelFilter = domain.LevelError
				m.updateFilter()
			case "6":
				m.levelFilter = domain.LevelFatal
				m.updateFilter()
			case "7":
				m.levelFilter = domain.LevelCritical
				m.updateFilter()
			case "g", "home":
				m.viewport.GotoTop()
			case "G", "end":
				m.viewport.GotoBottom()
			case "j", "down":
				m.viewport.LineDown(1)
			case "k", "up":
				m.viewport.LineUp(1)
			case "ctrl+d", "pgdown":
				m.viewport.HalfViewDown()
			case "ctrl+u", "pgup":
				m.viewport.HalfViewUp()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateViewport()

	case RecordMsg:
		if !m.paused {
			record := (*domain.Record)(msg)
			m.records = append(m.records, record)
			m.stats.Total++
			switch record.Level {
			case domain.LevelError:
				m.stats.Errors++
			case domain.LevelFatal, domain.LevelCritical:
				m.stats.Criticals++
			}

			// Keep only last 10000 records
			if len(m.records) > 10000 {
				m.records = m.records[1000:]
				m.stats.Total = len(m.records)
				m.stats.Errors = 0
				m.stats.Criticals = 0
				for _, r := range m.records {
					switch r.Level {
					case domain.LevelError:
						m.stats.Errors++
					case domain.LevelFatal, domain.LevelCritical:
						m.stats.Criticals++
					}
				}
				// Full recompute since indices shifted
				m.updateFilter()
			} else {
				// Incremental filter/update for new record
				query := strings.ToLower(m.searchQuery)
				if m.recordMatches(record, query) {
					m.filteredIdx = append(m.filteredIdx, len(m.records)-1)
					line := m.formatRecordLine(record)
					if m.content == "" {
						m.content = line
					} else {
						m.content += "\n" + line
					}
					m.updateViewport()
				}
			}
		}
		cmds = append(cmds, waitForRecord(m.recordChan))

	case ErrMsg:
		// Handle error (could show in status bar)
		cmds = append(cmds, waitForError(m.errChan))

	case TickMsg:
		// Periodic refresh
		cmds = append(cmds, tickCmd())
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	content := m.viewport.View()
	footer := m.renderFooter()

	return fmt.Sprintf("%s\n%s\n%s", header, content, footer)
}

func (m *Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("236")).
		Padding(0, 1).
		Width(m.width)

	title := fmt.Sprintf("logsift: %s (%s)", m.fileName, m.format)
	if m.paused {
		title += " [PAUSED]"
	}
	if !m.follow {
		title += " [NO-FOLLOW]"
	}

	statsStr := fmt.Sprintf("Total: %d | Errors: %d | Critical: %d",
		m.stats.Total, m.stats.Errors, m.stats.Criticals)

	levelStr := fmt.Sprintf("Level: %s+", m.levelFilter)

	header := titleStyle.Render(title)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Width(m.width)

	var info string
	if m.stats.Errors > 0 || m.stats.Criticals > 0 {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		critStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("201"))
		info = fmt.Sprintf("Total: %d | %s | %s | %s",
			m.stats.Total,
			errStyle.Render(fmt.Sprintf("Errors: %d", m.stats.Errors)),
			critStyle.Render(fmt.Sprintf("Critical: %d", m.stats.Criticals)),
			levelStr)
	} else {
		info = statsStr + " | " + levelStr
	}

	if m.searchQuery != "" {
		info += fmt.Sprintf(" | Search: %q", m.searchQuery)
	}

	return header + "\n" + infoStyle.Render(info)
}

func (m *Model) renderFooter() string {
	if m.searching {
		return m.textinput.View()
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Width(m.width)

	help := "q:quit /:search 1-7:level p:pause f:follow d:details c:clear g/G:top/bottom j/k:scroll"
	return helpStyle.Render(help)
}

func (m *Model) updateFilter() {
	m.filteredIdx = m.filteredIdx[:0]
	query := strings.ToLower(m.searchQuery)
	var b strings.Builder

	for i, r := range m.records {
		if !m.recordMatches(r, query) {
			continue
		}
		m.filteredIdx = append(m.filteredIdx, i)
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.formatRecordLine(r))
	}

	m.content = b.String()
	m.updateViewport()
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.content)

	// Auto-scroll to bottom when follow mode is on
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// recordMatches applies current level/search filters for a single record.
func (m *Model) recordMatches(r *domain.Record, query string) bool {
	if r.Level.Priority() < m.levelFilter.Priority() {
		return false
	}
	if query == "" {
		return true
	}
	msgLower := strings.ToLower(r.Message)
	serviceLower := strings.ToLower(r.Service)
	if strings.Contains(msgLower, query) || strings.Contains(serviceLower, query) {
		return true
	}
	if r.Error != nil && strings.Contains(strings.ToLower(r.Error.Message), query) {
		return true
	}
	return false
}

func (m *Model) formatRecordLine(r *domain.Record) string {
	timeStyle := output.Styles.Timestamp
	levelIndicator := output.LevelIndicator(string(r.Level))
	serviceStr := output.Styles.Service.Render("[" + r.Service + "]")

	msgStyle := output.LevelStyle(string(r.Level))
	msg := r.Message

	// Truncate message if too long
	maxMsgLen := m.width - 40
	if maxMsgLen < 20 {
		maxMsgLen = 20
	}
	if len(msg) > maxMsgLen {
		msg = msg[:maxMsgLen-3] + "..."
	}

	// Highlight search hits in message when searching
	if m.searchQuery != "" {
		msg = highlight(msg, m.searchQuery)
	}

	line := timeStyle.Render(r.Timestamp) + " " + levelIndicator + " " + serviceStr
	if m.showDetails {
		line += " " + detailStyle.Render(fmt.Sprintf("line:%d", r.LineNumber))
	}
	line += " "

	line += msgStyle.Render(msg)

	if r.Error != nil && r.Error.Name != "" {
		line += " " + output.Styles.Danger.Render(r.Error.Name)
	}

	return line
}

func highlight(s, query string) string {
	if query == "" || s == "" {
		return s
	}
	qs := strings.ToLower(query)
	ls := strings.ToLower(s)
	var b strings.Builder
	for {
		idx := strings.Index(ls, qs)
		if idx < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:idx])
		b.WriteString(highlightStyle.Render(s[idx : idx+len(query)]))
		s = s[idx+len(query):]
		ls = ls[idx+len(query):]
	}
	return b.String()
}

// waitForRecord creates a command that waits for a record
func waitForRecord(ch <-chan *domain.Record) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return RecordMsg(r)
	}
}

// waitForError creates a command that waits for an error
func waitForError(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return ErrMsg(err)
	}
}

// tickCmd creates a periodic tick command
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
