package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/navstack/internal/navbar"
	"github.com/jmylchreest/navstack/internal/screen"
	"github.com/jmylchreest/navstack/internal/transition"
)

const (
	barHeight = 2 // Content line plus bottom border
	logLines  = 6
)

var (
	barStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("8"))

	backStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	itemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("13")).
			Padding(1, 2)
)

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.viewHelp()
	default:
		return m.viewNavigate()
	}
}

func (m Model) viewNavigate() string {
	bar := m.renderBar()
	footer := m.renderLog() + "\n" + m.renderStatus()

	contentHeight := m.height - lipgloss.Height(bar) - lipgloss.Height(footer)
	if bar == "" {
		contentHeight = m.height - lipgloss.Height(footer)
	}
	if contentHeight < 3 {
		contentHeight = 3
	}

	parts := make([]string, 0, 3)
	if bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.renderContent(m.width, contentHeight), footer)
	return strings.Join(parts, "\n")
}

// renderBar draws the bar, clipped to the rows still visible while it
// slides in or out.
func (m Model) renderBar() string {
	c := m.sess.ctrl
	f := m.sess.animator.Frame()

	rows := barHeight
	if f.Active && f.Kind == transition.KindBar {
		visible := f.Progress
		if c.BarHidden() {
			visible = 1 - f.Progress
		}
		rows = int(math.Round(visible * barHeight))
	} else if c.BarHidden() {
		rows = 0
	}
	if rows <= 0 {
		return ""
	}

	lines := strings.Split(renderBarState(c.Bar().State(), m.width), "\n")
	if rows < len(lines) {
		// Hidden rows are the ones above the screen edge.
		lines = lines[len(lines)-rows:]
	}
	return strings.Join(lines, "\n")
}

func renderBarState(s navbar.State, width int) string {
	left := ""
	if s.HasBack() {
		left = backStyle.Render("‹ " + s.BackLabel)
	}
	right := ""
	if len(s.Items) > 0 {
		right = itemStyle.Render(strings.Join(s.Items, "  "))
	}

	inner := width
	if inner < 1 {
		inner = 1
	}
	title := lipgloss.PlaceHorizontal(inner, lipgloss.Center, s.Title)
	line := overlayEdges(title, left, right, inner)
	return barStyle.Width(inner).Render(line)
}

// overlayEdges places left and right over the ends of a centered title
// when they fit.
func overlayEdges(title, left, right string, width int) string {
	lw, rw := lipgloss.Width(left), lipgloss.Width(right)
	tw := lipgloss.Width(strings.TrimSpace(title))
	if lw+rw+tw+2 > width {
		return strings.TrimSpace(title)
	}
	pad := width - lw - rw - tw
	leftPad := pad / 2
	return left + strings.Repeat(" ", leftPad) + strings.TrimSpace(title) + strings.Repeat(" ", pad-leftPad) + right
}

// renderContent draws the visible screen, or both screens of a running
// slide at their current offsets.
func (m Model) renderContent(width, height int) string {
	c := m.sess.ctrl
	if modal := c.Modal(); modal != nil {
		box := modalStyle.Render(m.panelText(modal, 0))
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}

	f := m.sess.animator.Frame()
	if !f.Active || f.Kind != transition.KindScreen || f.From == nil || f.To == nil {
		return strings.Join(panel(m.panelText(c.Visible(), c.Len()), width, height), "\n")
	}

	out := panel(m.panelText(f.From, 0), width, height)
	in := panel(m.panelText(f.To, c.Len()), width, height)
	return compose(out, in, f, width, height)
}

// panelText is the plain-text body for s.
func (m Model) panelText(s screen.Screen, depth int) string {
	var sb strings.Builder
	sb.WriteString("\n  " + s.Title() + "\n\n")
	if depth > 0 {
		sb.WriteString(fmt.Sprintf("  depth %d\n", depth))
	}
	if id, ok := s.(screen.Identifier); ok {
		sb.WriteString("  id " + id.ID() + "\n")
	}
	if items := s.Chrome().Items; len(items) > 0 {
		sb.WriteString("  items " + strings.Join(items, ", ") + "\n")
	}
	return sb.String()
}

// panel pads text into exactly height rows of width cells.
func panel(text string, width, height int) []string {
	rows := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, height)
	for i := range out {
		line := ""
		if i < len(rows) {
			line = rows[i]
		}
		out[i] = fit(line, width)
	}
	return out
}

func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// compose lays the two panels onto one canvas at the frame's offsets.
// The screen higher in the stack is drawn last so it covers the other.
func compose(out, in []string, f transition.Frame, width, height int) string {
	length := width
	if f.Vertical() {
		length = height
	}
	outOff := int(math.Round(f.Outgoing * float64(length)))
	inOff := int(math.Round(f.Incoming * float64(length)))

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	layers := []struct {
		rows []string
		off  int
	}{{out, outOff}, {in, inOff}}
	if f.Direction == transition.FromLeft || f.Direction == transition.FromTop {
		layers[0], layers[1] = layers[1], layers[0]
	}

	for _, l := range layers {
		for y, row := range l.rows {
			for x, r := range []rune(row) {
				cx, cy := x, y
				if f.Vertical() {
					cy += l.off
				} else {
					cx += l.off
				}
				if cx < 0 || cx >= width || cy < 0 || cy >= height {
					continue
				}
				canvas[cy][cx] = r
			}
		}
	}

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// renderLog shows the most recent delegate and controller events.
func (m Model) renderLog() string {
	entries := m.sess.log
	if len(entries) > logLines {
		entries = entries[len(entries)-logLines:]
	}
	lines := make([]string, 0, logLines)
	for _, e := range entries {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%-40s %s", e.text, humanize.Time(e.at))))
	}
	for len(lines) < logLines {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}

	c := m.sess.ctrl
	state := fmt.Sprintf("%s · depth %d · %s", c.State(), c.Len(), c.Style())
	if !m.animated {
		state += " · instant"
	}
	return dimStyle.Render(state) + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	h := m.help
	h.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" + h.View(m.keys) + "\n\n" +
		dimStyle.Render("Press ? or esc to return")
}
