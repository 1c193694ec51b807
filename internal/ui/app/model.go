package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	monitordto "trafficwatch/internal/modules/monitor/dto"
	"trafficwatch/internal/ui/components"
	"trafficwatch/internal/ui/theme"
	historyview "trafficwatch/internal/ui/views/history"
	trendview "trafficwatch/internal/ui/views/trend"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// MonitorPort is the slice of the monitor module the dashboard drives. The
// monitor CLI handler satisfies it.
type MonitorPort interface {
	History(ctx context.Context, limit int, since time.Time) ([]monitordto.SampleOutput, error)
	Stats(ctx context.Context, since, until time.Time) (monitordto.StatsOutput, error)
	RunOnce(ctx context.Context) (monitordto.CycleOutput, error)
	Render(ctx context.Context) (monitordto.RenderOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabHistory tabID = iota
	tabTrend
	tabCount
)

var tabLabels = [tabCount]string{"History", "Trend"}

// ─── async messages ───────────────────────────────────────────────────────────

type refreshTickMsg time.Time

type cycleDoneMsg struct {
	out monitordto.CycleOutput
	err error
}

type renderDoneMsg struct {
	out monitordto.RenderOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Refresh key.Binding
	Cycle   key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next tab")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Cycle:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sample now")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Cycle},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model of the watch dashboard. It owns tab
// routing, periodic refresh, the help overlay and the command palette.
type Model struct {
	port     MonitorPort
	interval time.Duration
	now      func() time.Time

	histView  historyview.Model
	trendView trendview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	updated   time.Time
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel builds the dashboard. A non-positive interval disables periodic
// refresh; limit bounds the history list (0 shows everything).
func NewModel(port MonitorPort, interval time.Duration, limit int) Model {
	return Model{
		port:      port,
		interval:  interval,
		now:       time.Now,
		histView:  historyview.New(port, limit),
		trendView: trendview.New(port),
		activeTab: tabHistory,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.histView.Init(), m.trendView.Init(), m.scheduleRefresh())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.reload(), m.scheduleRefresh())

	// Load results are routed to their owning view whichever tab is shown.
	case historyview.SamplesLoadedMsg:
		if msg.Err != nil {
			m.status = "history: " + msg.Err.Error()
		} else {
			m.updated = m.now()
			m.trendView.SetSamples(msg.Samples)
		}
		var cmd tea.Cmd
		m.histView, cmd = m.histView.Update(msg)
		return m, cmd

	case trendview.StatsLoadedMsg:
		if msg.Err != nil {
			m.status = "stats: " + msg.Err.Error()
		}
		var cmd tea.Cmd
		m.trendView, cmd = m.trendView.Update(msg)
		return m, cmd

	case cycleDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "cycle: " + msg.err.Error()
		case msg.out.Sample != nil:
			m.status = fmt.Sprintf("sampled %.2f h at %s", msg.out.Sample.Duration, msg.out.Sample.Time)
		default:
			m.status = "cycle: " + msg.out.Outcome
		}
		return m, m.reload()

	case renderDoneMsg:
		if msg.err != nil {
			m.status = "render: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("chart written to %s (%d samples)", msg.out.Snapshot, msg.out.Samples)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the list filter while it is being typed into.
		if m.activeTab == tabHistory && m.histView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			m.status = "refreshing…"
			return m, m.reload()
		case "c":
			m.status = "sampling…"
			return m, m.runCycleCmd()
		}
	}

	// Spinner ticks carry the spinner id, so both views can see them.
	var hCmd, tCmd tea.Cmd
	switch m.activeTab {
	case tabHistory:
		m.histView, hCmd = m.histView.Update(msg)
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.trendView, tCmd = m.trendView.Update(msg)
		}
	case tabTrend:
		m.trendView, tCmd = m.trendView.Update(msg)
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.histView, hCmd = m.histView.Update(msg)
		}
	}
	cmds = append(cmds, hCmd, tCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabTrend:
		content = m.trendView.View()
	default:
		content = m.histView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "trafficwatch  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if !m.updated.IsZero() {
		summary := fmt.Sprintf("updated %s  %d samples (%s)",
			m.updated.Format("15:04:05"), len(m.histView.Samples()), m.histView.Window())
		left = theme.Muted.Render(summary) + "  " + left
	}
	right := theme.Muted.Render("?:help  r:refresh  c:sample  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "cycle:once":
		m.status = "sampling…"
		return m, m.runCycleCmd()

	case "chart:render":
		m.status = "rendering…"
		return m, m.renderCmd()

	case "history:limit":
		if len(parts) < 2 {
			m.status = "usage: history:limit <n>"
			return m, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			m.status = "invalid limit: " + parts[1]
			return m, nil
		}
		return m, m.histView.SetWindow(n, m.sinceBound())

	case "history:since":
		if len(parts) < 2 {
			m.status = "usage: history:since <duration|RFC3339>"
			return m, nil
		}
		since, err := parseSince(parts[1], m.now())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, tea.Batch(
			m.histView.SetWindow(m.limitBound(), since),
			m.trendView.SetWindow(since),
		)

	case "history:all":
		return m, tea.Batch(
			m.histView.SetWindow(0, time.Time{}),
			m.trendView.SetWindow(time.Time{}),
		)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// parseSince accepts a look-back duration such as "6h" or an RFC 3339 instant.
func parseSince(raw string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return time.Time{}, errors.New("look-back must be positive")
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since %q: expected duration or RFC3339", raw)
	}
	return t, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.histView, _ = m.histView.Update(sz)
	m.trendView, _ = m.trendView.Update(sz)
}

func (m Model) sinceBound() time.Time { return m.histView.Since() }

func (m Model) limitBound() int { return m.histView.Limit() }

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) reload() tea.Cmd {
	return tea.Batch(m.histView.Reload(), m.trendView.Reload())
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return refreshTickMsg(t) })
}

func (m Model) runCycleCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.RunOnce(context.Background())
		return cycleDoneMsg{out: out, err: err}
	}
}

func (m Model) renderCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Render(context.Background())
		return renderDoneMsg{out: out, err: err}
	}
}

// ─── program ─────────────────────────────────────────────────────────────────

// Run starts the dashboard in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, port MonitorPort, interval time.Duration, limit int) error {
	program := tea.NewProgram(NewModel(port, interval, limit), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
