package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type stageMsg string

type doneMsg struct{}

// progressModel shows a spinner next to the current stage name and clears
// itself once done.
type progressModel struct {
	spinner spinner.Model
	stage   string
	done    bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle()
	return progressModel{spinner: s}
}

func (m progressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.stage = string(msg)
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done || m.stage == "" {
		return ""
	}
	return m.spinner.View() + " " + m.stage
}

// Progress reports pipeline stages. A disabled Progress does nothing.
type Progress struct {
	prog *tea.Program
	done chan struct{}
	err  error
}

// StartProgress runs a spinner program on out when enabled. It reads no
// input and installs no signal handlers, so it never competes with the
// pipeline for the terminal.
func StartProgress(out io.Writer, enabled bool) *Progress {
	if !enabled || out == nil {
		return &Progress{}
	}
	p := &Progress{
		prog: tea.NewProgram(newProgressModel(),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		_, p.err = p.prog.Run()
	}()
	return p
}

// Stage switches the displayed stage.
func (p *Progress) Stage(name string) {
	if p.prog != nil {
		p.prog.Send(stageMsg(name))
	}
}

// Stop clears the spinner, waits for the program to exit and returns the
// error it exited with, if any.
func (p *Progress) Stop() error {
	if p.prog == nil {
		return p.err
	}
	p.prog.Send(doneMsg{})
	<-p.done
	p.prog = nil
	return p.err
}
