// Package tui renders a terminal status panel for a running listener.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"snapkey/capture"
	"snapkey/listener"
)

const maxRecent = 8

// Info is the static part of the panel.
type Info struct {
	Combo    string
	Backend  string
	Suppress bool
	CopyKeys string
	Version  string
}

// EventMsg carries a listener event.
type EventMsg struct{ Event listener.Event }

// CaptureMsg carries the outcome of one capture.
type CaptureMsg struct{ Result capture.Result }

// StateMsg reports a listener lifecycle change.
type StateMsg struct{ State listener.State }

type tickMsg time.Time

type entry struct {
	at   time.Time
	text string
	bad  bool
}

type model struct {
	info       Info
	state      listener.State
	processing bool
	frame      int
	width      int

	accepted, dropped, failed int
	last                      *capture.Result
	recent                    []entry
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("239")).Padding(0, 1)
	spinnerFrame = []string{"◐", "◓", "◑", "◒"}
)

func newModel(info Info) model {
	return model{info: info, state: listener.Stopped}
}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tick()

	case StateMsg:
		m.state = msg.State

	case EventMsg:
		m = m.applyEvent(msg.Event)

	case CaptureMsg:
		r := msg.Result
		m.last = &r
		if r.Err == nil {
			m = m.push(entry{at: time.Now(), text: fmt.Sprintf("captured %dx%d, %s in %s",
				r.Width, r.Height, humanBytes(r.OutBytes), r.Duration.Round(time.Millisecond))})
		}
	}
	return m, nil
}

func (m model) applyEvent(ev listener.Event) model {
	switch ev.Kind {
	case listener.EventTriggered:
		m.accepted++
		m.processing = true
	case listener.EventDropped:
		m.dropped++
	case listener.EventDone:
		m.processing = false
	case listener.EventFailed:
		m.failed++
		m.processing = false
		m = m.push(entry{at: ev.At, text: "failed: " + errText(ev.Err), bad: true})
	case listener.EventHookError:
		m = m.push(entry{at: ev.At, text: errText(ev.Err), bad: true})
	}
	return m
}

func (m model) push(e entry) model {
	recent := append([]entry{e}, m.recent...)
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	m.recent = recent
	return m
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("snapkey"))
	if m.info.Version != "" {
		b.WriteString(dimStyle.Render(" " + m.info.Version))
	}
	b.WriteString("\n\n")

	b.WriteString(m.statusLine() + "\n")
	b.WriteString(labelStyle.Render("hotkey   ") + m.info.Combo)
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s, suppress=%t)", m.info.Backend, m.info.Suppress)) + "\n")
	if m.info.CopyKeys != "" {
		b.WriteString(labelStyle.Render("copy     ") + m.info.CopyKeys + "\n")
	}
	b.WriteString(labelStyle.Render("captures ") + fmt.Sprintf("%d accepted", m.accepted))
	b.WriteString(dimStyle.Render(fmt.Sprintf(", %d dropped", m.dropped)))
	if m.failed > 0 {
		b.WriteString(errStyle.Render(fmt.Sprintf(", %d failed", m.failed)))
	}
	b.WriteString("\n")

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, e := range m.recent {
			line := dimStyle.Render(e.at.Format("15:04:05")) + " "
			if e.bad {
				line += errStyle.Render(e.text)
			} else {
				line += okStyle.Render(e.text)
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("q to quit"))

	style := panelStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(b.String()) + "\n"
}

func (m model) statusLine() string {
	switch {
	case m.processing:
		return busyStyle.Render(spinnerFrame[m.frame%len(spinnerFrame)] + " CAPTURING")
	case m.state == listener.Running:
		return okStyle.Render("● LISTENING")
	case m.state == listener.Stopping:
		return warnStyle.Render("○ STOPPING")
	}
	return dimStyle.Render("○ STOPPED")
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// Program wraps the bubbletea program. A nil *Program ignores every
// call so callers need not check whether the panel is enabled.
type Program struct {
	p *tea.Program
}

func New(info Info) *Program {
	return &Program{p: tea.NewProgram(newModel(info), tea.WithAltScreen())}
}

// Run blocks until the user quits or Quit is called.
func (p *Program) Run() error {
	_, err := p.p.Run()
	return err
}

func (p *Program) Send(msg tea.Msg) {
	if p == nil {
		return
	}
	p.p.Send(msg)
}

func (p *Program) Quit() {
	if p == nil {
		return
	}
	p.p.Quit()
}
