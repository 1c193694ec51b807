package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"trafficwatch/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

// Command describes one palette entry. Args is shown as a usage hint.
type Command struct {
	Name string
	Args string
	Help string
}

// Commands are the entries app.Model.executePalette understands.
var Commands = []Command{
	{Name: "cycle:once", Help: "sample the route now"},
	{Name: "chart:render", Help: "redraw latest.png from history"},
	{Name: "history:limit", Args: "<n>", Help: "keep the n most recent samples, 0 for all"},
	{Name: "history:since", Args: "<duration|RFC3339>", Help: "start the window at a point in time"},
	{Name: "history:all", Help: "clear the window"},
}

const maxSuggestions = 5

var (
	paletteFrame = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	selectedName = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

// Palette is a command line overlay with fuzzy suggestions. Tab completes
// the highlighted suggestion.
type Palette struct {
	input    textinput.Model
	visible  bool
	width    int
	matches  []Command
	selected int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "type a command"
	ti.CharLimit = 128
	p := Palette{input: ti}
	p.refresh()
	return p
}

func (p Palette) Visible() bool { return p.visible }

// Open resets the input and returns the cursor blink command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	p.refresh()
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// Suggestions returns the commands matching the word typed so far.
func (p Palette) Suggestions() []Command { return p.matches }

// Value is the current command line.
func (p Palette) Value() string { return p.input.Value() }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "up", "ctrl+p":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down", "ctrl+n":
			if p.selected < len(p.matches)-1 {
				p.selected++
			}
			return p, nil
		case "tab":
			p.complete()
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.refresh()
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Run command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if len(p.matches) > 0 {
		sb.WriteString("\n")
	}
	for i, c := range p.matches {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		marker := "  "
		name := usage
		if i == p.selected {
			marker = "▸ "
			name = selectedName.Render(usage)
		}
		sb.WriteString(marker + name + "  " + theme.Muted.Render(c.Help) + "\n")
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteFrame.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// complete replaces the command word with the selected suggestion and
// keeps any arguments already typed.
func (p *Palette) complete() {
	if len(p.matches) == 0 {
		return
	}
	c := p.matches[p.selected]
	line := c.Name
	if _, args, ok := strings.Cut(strings.TrimLeft(p.input.Value(), " "), " "); ok {
		line += " " + args
	} else if c.Args != "" {
		line += " "
	}
	p.input.SetValue(line)
	p.input.CursorEnd()
	p.refresh()
}

func (p *Palette) refresh() {
	p.selected = 0
	word, _, typingArgs := strings.Cut(strings.TrimLeft(p.input.Value(), " "), " ")
	switch {
	case word == "":
		p.matches = Commands[:min(len(Commands), maxSuggestions)]
		return
	case typingArgs:
		p.matches = nil
		for _, c := range Commands {
			if c.Name == word {
				p.matches = []Command{c}
			}
		}
		return
	}
	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	found := fuzzy.Find(strings.ToLower(word), names)
	p.matches = make([]Command, 0, min(len(found), maxSuggestions))
	for _, m := range found {
		if len(p.matches) == maxSuggestions {
			break
		}
		p.matches = append(p.matches, Commands[m.Index])
	}
}
