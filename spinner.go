package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	spinnerLabel = " Generating..."
	spinnerFPS   = time.Second / 10
)

var spinnerRunes = []rune("⣾⣽⣻⢿⡿⣟⣯⣷")

type stepSpinnerMsg struct{}

func stepSpinner() tea.Cmd {
	return tea.Tick(spinnerFPS, func(time.Time) tea.Msg {
		return stepSpinnerMsg{}
	})
}

type spinner int

func (s spinner) step() spinner {
	s++
	if int(s) > len(spinnerRunes)-1 {
		s = 0
	}
	return s
}

// View renders the animation.
func (s spinner) View() string {
	var b strings.Builder
	b.WriteString(stderrStyles().Spinner.Render(string(spinnerRunes[s])))
	b.WriteString(spinnerLabel)
	return b.String()
}
