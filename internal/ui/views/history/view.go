package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	monitordto "trafficwatch/internal/modules/monitor/dto"
	"trafficwatch/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, limit int, since time.Time) ([]monitordto.SampleOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SamplesLoadedMsg struct {
	Samples []monitordto.SampleOutput
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sampleItem struct {
	sample monitordto.SampleOutput
	delta  float64
	first  bool
	// mean of the loaded window, the reference for congestion grading.
	mean float64
}

func (i sampleItem) Title() string { return i.sample.Date + " " + i.sample.Time }

func (i sampleItem) Description() string {
	grade := theme.Grade(i.sample.Duration, i.mean)
	if i.first {
		return fmt.Sprintf("%.2f h  %s", i.sample.Duration, grade)
	}
	return fmt.Sprintf("%.2f h  %+.2f  %s", i.sample.Duration, i.delta, grade)
}

func (i sampleItem) FilterValue() string { return i.sample.Date + " " + i.sample.Time }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	limit   int
	since   time.Time
	samples []monitordto.SampleOutput
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port HistoryPort, limit int) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		limit:   limit,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case SamplesLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.detail.SetContent(theme.Bad.Render(msg.Err.Error()))
			return m, nil
		}
		m.samples = msg.Samples
		cmds = append(cmds, m.list.SetItems(toItems(msg.Samples)))
		// Newest first, so the top row is the latest sample.
		m.list.Select(0)
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading && len(m.samples) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Frame(detailW, m.height).Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload fetches the samples matching the current window.
func (m Model) Reload() tea.Cmd {
	port, limit, since := m.port, m.limit, m.since
	return func() tea.Msg {
		samples, err := port.History(context.Background(), limit, since)
		return SamplesLoadedMsg{Samples: samples, Err: err}
	}
}

// SetWindow changes the history window; a zero limit or since lifts that bound.
func (m *Model) SetWindow(limit int, since time.Time) tea.Cmd {
	m.limit = limit
	m.since = since
	m.loading = true
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Window describes the active history bounds for the status bar.
func (m Model) Window() string {
	parts := []string{"all"}
	if m.limit > 0 {
		parts[0] = fmt.Sprintf("last %d", m.limit)
	}
	if !m.since.IsZero() {
		parts = append(parts, "since "+m.since.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " ")
}

// Limit returns the active sample cap; 0 means unbounded.
func (m Model) Limit() int { return m.limit }

// Since returns the active lower bound; zero means unbounded.
func (m Model) Since() time.Time { return m.since }

// Samples returns the loaded samples in chronological order.
func (m Model) Samples() []monitordto.SampleOutput { return m.samples }

// Err returns the last load error, if any.
func (m Model) Err() error { return m.err }

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func toItems(samples []monitordto.SampleOutput) []list.Item {
	var mean float64
	for _, s := range samples {
		mean += s.Duration
	}
	if len(samples) > 0 {
		mean /= float64(len(samples))
	}
	items := make([]list.Item, 0, len(samples))
	for i := len(samples) - 1; i >= 0; i-- {
		item := sampleItem{sample: samples[i], first: i == 0, mean: mean}
		if i > 0 {
			item.delta = samples[i].Duration - samples[i-1].Duration
		}
		items = append(items, item)
	}
	return items
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sampleItem)
	if !ok {
		return theme.Muted.Render("No samples recorded yet")
	}
	s := item.sample
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Date+" "+s.Time) + "\n\n")
	sb.WriteString(theme.Muted.Render("duration: ") + theme.Hours(s.Duration, item.mean) + "\n")
	sb.WriteString(theme.Muted.Render("traffic:  ") + theme.Grade(s.Duration, item.mean).String() + "\n")
	sb.WriteString(theme.Muted.Render("minutes:  ") + fmt.Sprintf("%.0f", s.Duration*60) + "\n")
	sb.WriteString(theme.Muted.Render("captured: ") + s.Timestamp.Format(time.RFC3339) + "\n")
	if !item.first {
		sb.WriteString(theme.Muted.Render("change:   ") + theme.Delta(item.delta) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render(m.Window()))
	return sb.String()
}
