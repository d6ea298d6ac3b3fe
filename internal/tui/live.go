package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/entropic/internal/config"
	"github.com/san-kum/entropic/internal/dynamo"
	"github.com/san-kum/entropic/internal/experiment"
	"github.com/san-kum/entropic/internal/sim"
	"github.com/san-kum/entropic/internal/spectral"
)

const (
	canvasWidth     = 64
	canvasHeight    = 18
	historyCapacity = 400
	frameRate       = 30
	maxStepsPerTick = 512
)

// TickMsg drives the stepping loop. Gen ties it to the simulation that
// scheduled it; ticks from an earlier simulation are dropped.
type TickMsg struct {
	Time time.Time
	Gen  int
}

type viewState int

const (
	stateMenu viewState = iota
	stateSim
)

// Model holds the simulator being stepped and the traces shown beside it.
type Model struct {
	state   viewState
	presets []string
	cursor  int

	name         string
	gen          int
	cfg          *config.Resolved
	sim          *sim.Simulator
	stepsPerTick int
	running      bool
	canvas       *Canvas
	peak         float64

	last    sim.StepDiagnostics
	energy  []float64
	entropy []float64
	density []float64
	err     error

	showHelp bool
}

// NewMenu starts on the preset picker.
func NewMenu() Model {
	return Model{
		state:        stateMenu,
		presets:      config.ListPresets(),
		stepsPerTick: 4,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
	}
}

// NewModel starts stepping cfg straight away.
func NewModel(name string, cfg *config.Resolved) (Model, error) {
	m := NewMenu()
	if err := m.load(name, cfg); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) load(name string, cfg *config.Resolved) error {
	s, err := experiment.New(cfg, experiment.Options{}).Setup()
	if err != nil {
		return err
	}

	m.state = stateSim
	m.gen++
	m.name = name
	m.cfg = cfg
	m.sim = s
	m.running = true
	m.err = nil
	m.last = sim.StepDiagnostics{}
	m.energy = make([]float64, 0, historyCapacity)
	m.entropy = make([]float64, 0, historyCapacity)

	m.density = spectral.Density(s.Wavefunction())
	m.peak = 0
	for _, v := range m.density {
		m.peak = max(m.peak, v)
	}
	m.draw()
	return nil
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg{Time: t, Gen: gen} })
}

func (m Model) Init() tea.Cmd {
	if m.state == stateSim {
		return m.tick()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.state == stateMenu {
			return m.updateMenu(msg)
		}
		switch msg.String() {
		case " ":
			if !m.sim.Done() {
				m.running = !m.running
			}
		case "r":
			if err := m.load(m.name, m.cfg); err != nil {
				m.err = err
				return m, nil
			}
			return m, m.tick()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		case "esc":
			m.state = stateMenu
			m.running = false
		}
	case TickMsg:
		if m.state != stateSim || msg.Gen != m.gen {
			return m, nil
		}
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		name := m.presets[m.cursor]
		cfg, err := config.GetPreset(name).Resolve()
		if err == nil {
			err = m.load(name, cfg)
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick integrator steps.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		d, err := m.sim.Step()
		if errors.Is(err, dynamo.ErrFinished) {
			m.running = false
			break
		}
		if err != nil {
			m.err = err
			m.running = false
			break
		}

		m.last = d
		m.density = d.Density
		m.energy = appendCapped(m.energy, d.Energy)
		m.entropy = appendCapped(m.entropy, d.Entropy)
		if m.sim.Done() {
			m.running = false
			break
		}
	}
	for _, v := range m.density {
		m.peak = max(m.peak, v)
	}
	m.draw()
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Profile(m.density, m.peak*1.05)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusFailed.Render("FAILED")
	case m.sim.Done():
		return statusPaused.Render("FINISHED")
	case m.running:
		return statusRunning.Render("RUNNING")
	default:
		return statusPaused.Render("PAUSED")
	}
}

func (m Model) View() string {
	if m.state == stateMenu {
		return m.menuView()
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.entropy) > 1 {
		chart := asciigraph.Plot(m.entropy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Entropy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d / %d", m.sim.Steps(), m.cfg.NumSteps))
	row("Tau", fmt.Sprintf("%.4f", m.last.Tau))
	row("Norm", fmt.Sprintf("%.10f", m.last.Norm))
	row("Entropy", fmt.Sprintf("%.5f", m.last.Entropy))
	row("Energy", fmt.Sprintf("%.5f", m.last.Energy))
	row("<x>", fmt.Sprintf("%.4f", m.last.XMean))
	row("mu", fmt.Sprintf("%.5f", m.last.Mu))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	row("T, alpha", fmt.Sprintf("%g, %g", m.cfg.TParam, m.cfg.Alpha))
	row("Mode", m.cfg.Sim().Mode.String())
	if m.err != nil {
		s.WriteString("\n" + statusFailed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\n+/-:Speed ESC:Menu ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space    Pause/Resume
  R        Restart from the initial packet
  + / -    Double/halve steps per frame
  Esc      Back to the preset menu
  ?        Toggle this help
  Q        Quit
`

func (m Model) menuView() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("ENTROPIC") + "\n")
	s.WriteString(dimStyle.Render("entropy-driven wavefunction collapse") + "\n\n")

	for i, name := range m.presets {
		line := name
		if p := config.GetPreset(name); p != nil && p.TParam != nil && p.Alpha != nil {
			line = fmt.Sprintf("%-10s T=%g alpha=%g", name, *p.TParam, *p.Alpha)
		}
		if i == m.cursor {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + dimStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + statusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("↑↓:Select Enter:Run Q:Quit"))
	return s.String()
}

// Run blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
