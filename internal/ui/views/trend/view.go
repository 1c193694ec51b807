package trend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	monitordto "trafficwatch/internal/modules/monitor/dto"
	"trafficwatch/internal/ui/components"
	"trafficwatch/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatsPort interface {
	Stats(ctx context.Context, since, until time.Time) (monitordto.StatsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatsLoadedMsg struct {
	Stats monitordto.StatsOutput
	Err   error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    StatsPort
	stats   monitordto.StatsOutput
	samples []monitordto.SampleOutput
	since   time.Time
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port StatsPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StatsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.stats = msg.Stats
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.loading && m.stats.Count == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading statistics…")
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Travel time") + "\n\n")
	if m.err != nil {
		sb.WriteString(theme.Bad.Render(m.err.Error()) + "\n\n")
	}
	if m.stats.Count == 0 {
		sb.WriteString(theme.Muted.Render("No samples recorded yet"))
		return m.pane(sb.String())
	}

	s := m.stats
	sb.WriteString(theme.Muted.Render("samples: ") + fmt.Sprintf("%d", s.Count) + "\n")
	sb.WriteString(theme.Muted.Render("min:     ") + theme.Hours(s.Min, s.Mean) + "\n")
	sb.WriteString(theme.Muted.Render("mean:    ") + fmt.Sprintf("%.2f h", s.Mean) + "\n")
	sb.WriteString(theme.Muted.Render("max:     ") + theme.Hours(s.Max, s.Mean) + "\n")
	sb.WriteString(theme.Muted.Render("span:    ") +
		s.First.Local().Format("2006-01-02 15:04") + " → " + s.Last.Local().Format("2006-01-02 15:04") + "\n\n")

	if len(m.samples) > 0 {
		values := make([]float64, len(m.samples))
		for i, sample := range m.samples {
			values[i] = sample.Duration
		}
		width := max(m.width-8, 8)
		sb.WriteString(theme.Title.Render("Recent") + "\n")
		sb.WriteString(theme.Trend.Render(components.Sparkline(values, width)) + "\n\n")
		sb.WriteString(theme.Title.Render("By hour of day") + "\n")
		sb.WriteString(m.renderHourly(HourlyMeans(m.samples)))
	}
	return m.pane(sb.String())
}

// Reload fetches aggregate statistics for the current window.
func (m Model) Reload() tea.Cmd {
	port, since := m.port, m.since
	return func() tea.Msg {
		stats, err := port.Stats(context.Background(), since, time.Time{})
		return StatsLoadedMsg{Stats: stats, Err: err}
	}
}

// SetWindow restricts statistics to samples captured at or after since.
func (m *Model) SetWindow(since time.Time) tea.Cmd {
	m.since = since
	m.loading = true
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// SetSamples feeds the chronological samples drawn by the sparkline.
func (m *Model) SetSamples(samples []monitordto.SampleOutput) {
	m.samples = samples
}

// HourlyMeans averages sample durations by hour of capture. Hours with no
// samples are reported as -1.
func HourlyMeans(samples []monitordto.SampleOutput) [24]float64 {
	var sums [24]float64
	var counts [24]int
	for _, s := range samples {
		h := s.Timestamp.Hour()
		sums[h] += s.Duration
		counts[h]++
	}
	var means [24]float64
	for h := range means {
		means[h] = -1
		if counts[h] > 0 {
			means[h] = sums[h] / float64(counts[h])
		}
	}
	return means
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderHourly(means [24]float64) string {
	peak := 0.0
	for _, v := range means {
		peak = max(peak, v)
	}
	barW := max(m.width-24, 10)
	var sb strings.Builder
	for h, v := range means {
		if v < 0 {
			continue
		}
		n := 1
		if peak > 0 {
			n = max(int(v/peak*float64(barW)), 1)
		}
		sb.WriteString(fmt.Sprintf("%s %s %.2f\n",
			theme.Muted.Render(fmt.Sprintf("%02d:00", h)),
			theme.Trend.Render(strings.Repeat("█", n)),
			v))
	}
	return sb.String()
}

func (m Model) pane(content string) string {
	return theme.Frame(m.width, m.height).Padding(1).Render(content)
}
