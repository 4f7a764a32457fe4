package main

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The TUI renders a small status pill driven entirely by the event queue:
// it polls the queue every 100ms and applies whatever arrived. Transient
// states (ready, failed, language flash) hide themselves after a delay; a
// generation counter cancels stale hide timers when a newer event has
// already replaced the state they were scheduled for.

type pollMsg time.Time
type animMsg time.Time
type hideMsg struct{ gen int }

type pillState int

const (
	pillHidden pillState = iota
	pillLoading
	pillReady
	pillFailed
	pillListening
	pillLangFlash
)

const (
	readyHideDelay = 2 * time.Second
	failHideDelay  = 5 * time.Second
	flashHideDelay = 1500 * time.Millisecond
)

var (
	pillGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("113")).Bold(true)
	pillRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pillOrange = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	pillBlue   = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Bold(true)
	pillDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pillWave   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	pillFrame  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

type tuiModel struct {
	bus   *EventBus
	state pillState
	abbr  string
	fail  string
	frame int
	gen   int
}

func NewTUIProgram(bus *EventBus, lang Language) *tea.Program {
	m := tuiModel{bus: bus, abbr: lang.Abbr}
	return tea.NewProgram(m)
}

func pollTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func animTick() tea.Cmd {
	return tea.Tick(45*time.Millisecond, func(t time.Time) tea.Msg {
		return animMsg(t)
	})
}

func hideAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return hideMsg{gen: gen}
	})
}

func (m tuiModel) Init() tea.Cmd {
	return pollTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case pollMsg:
		cmds := []tea.Cmd{pollTick()}
		animating := m.animating()
		for _, ev := range m.bus.Drain() {
			var cmd tea.Cmd
			m, cmd = m.apply(ev)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if m.animating() && !animating {
			cmds = append(cmds, animTick())
		}
		return m, tea.Batch(cmds...)

	case animMsg:
		if !m.animating() {
			return m, nil
		}
		m.frame++
		return m, animTick()

	case hideMsg:
		// Stale timer: something newer owns the pill now.
		if msg.gen != m.gen {
			return m, nil
		}
		if m.state == pillReady || m.state == pillFailed || m.state == pillLangFlash {
			m.state = pillHidden
		}
		return m, nil
	}
	return m, nil
}

func (m tuiModel) animating() bool {
	return m.state == pillLoading || m.state == pillListening
}

func (m tuiModel) apply(ev Event) (tuiModel, tea.Cmd) {
	presentTray(ev)
	m.gen++
	switch ev.Kind {
	case EventModelLoading:
		m.state = pillLoading

	case EventModelReady:
		m.state = pillReady
		return m, hideAfter(readyHideDelay, m.gen)

	case EventModelLoadFailed:
		m.state = pillFailed
		m.fail = ev.Reason
		return m, hideAfter(failHideDelay, m.gen)

	case EventListeningStarted:
		m.state = pillListening
		m.abbr = ev.Lang

	case EventListeningStopped:
		if m.state == pillListening {
			m.state = pillHidden
		}

	case EventLanguageSwitched:
		m.state = pillLangFlash
		m.abbr = ev.Lang
		return m, hideAfter(flashHideDelay, m.gen)
	}
	return m, nil
}

func (m tuiModel) View() string {
	var body string
	switch m.state {
	case pillHidden:
		return pillDim.Render("dikta "+version) + "\n" +
			pillDim.Render("F9 dictate · F10 language · ctrl+c quit") + "\n"

	case pillLoading:
		body = pillOrange.Render("◌ loading model"+loadingDots(m.frame)) + "  " + pillDim.Render(m.abbr)

	case pillReady:
		body = pillGreen.Render("✓ ready") + "  " + pillDim.Render(m.abbr)

	case pillFailed:
		reason := m.fail
		if len(reason) > 48 {
			reason = reason[:48] + "…"
		}
		body = pillRed.Render("✗ model load failed") + " " + pillDim.Render(reason)

	case pillListening:
		body = pillRed.Render("● "+m.abbr) + " " + pillWave.Render(waveform(m.frame, 18))

	case pillLangFlash:
		body = pillBlue.Render("⇄ " + m.abbr)
	}
	return pillFrame.Render(body) + "\n"
}

func loadingDots(frame int) string {
	return strings.Repeat(".", 1+(frame/8)%3)
}

// waveform draws a synthetic level meter. There is no real amplitude feed to
// the UI, it just needs to look alive while the microphone is open.
func waveform(frame int, width int) string {
	bars := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for i := 0; i < width; i++ {
		v := math.Sin(float64(frame)*0.35+float64(i)*0.7)*math.Sin(float64(i)*0.23+float64(frame)*0.11)*0.5 + 0.5
		idx := int(v * float64(len(bars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		b.WriteRune(bars[idx])
	}
	return b.String()
}
