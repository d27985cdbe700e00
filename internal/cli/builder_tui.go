package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"heygen-batch/internal/queue"
)

type builderPhase int

const (
	builderPhaseProjects builderPhase = iota
	builderPhaseAvatar
	builderPhaseMore
)

var (
	builderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	builderMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	builderErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	builderSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	builderDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// builderModel walks the user through queue assembly: pick projects, pick
// the avatar to present them, repeat for another avatar if wanted. A project
// can only be queued once per run.
type builderModel struct {
	projects []queue.ProjectScenes
	avatars  []string

	phase    builderPhase
	cursor   int
	selected map[int]bool
	used     map[int]bool
	filter   textinput.Model

	jobs    []queue.Job
	errMsg  string
	aborted bool
}

func newBuilderModel(projects []queue.ProjectScenes, avatars []string) builderModel {
	filter := textinput.New()
	filter.Placeholder = "type to filter avatars"
	filter.Prompt = "> "
	filter.Focus()
	return builderModel{
		projects: projects,
		avatars:  avatars,
		phase:    builderPhaseProjects,
		selected: map[int]bool{},
		used:     map[int]bool{},
		filter:   filter,
	}
}

func (m builderModel) Init() tea.Cmd { return nil }

func (m builderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "q":
		// In the avatar phase "q" types into the filter field.
		if m.phase != builderPhaseAvatar {
			m.aborted = true
			return m, tea.Quit
		}
	}

	switch m.phase {
	case builderPhaseProjects:
		return m.updateProjects(key), nil
	case builderPhaseAvatar:
		return m.updateAvatar(key)
	case builderPhaseMore:
		return m.updateMore(key)
	}
	return m, nil
}

func (m builderModel) updateProjects(key tea.KeyMsg) builderModel {
	m.errMsg = ""
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.projects)-1 {
			m.cursor++
		}
	case " ", "space":
		if !m.used[m.cursor] {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case "a":
		for i := range m.projects {
			if !m.used[i] {
				m.selected[i] = true
			}
		}
	case "enter":
		if len(m.selectedIndexes()) == 0 {
			m.errMsg = "select at least one project (space toggles, a selects all)"
			return m
		}
		m.phase = builderPhaseAvatar
		m.cursor = 0
	}
	return m
}

func (m builderModel) updateAvatar(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	avatars := m.filteredAvatars()
	switch key.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(avatars)-1 {
			m.cursor++
		}
	case "left":
		m.phase = builderPhaseProjects
		m.cursor = 0
		m.filter.SetValue("")
	case "enter":
		if len(avatars) == 0 {
			m.errMsg = "no avatar matches the filter"
			return m, nil
		}
		if m.cursor >= len(avatars) {
			m.cursor = len(avatars) - 1
		}
		picked := make([]queue.ProjectScenes, 0)
		indexes := m.selectedIndexes()
		for _, i := range indexes {
			picked = append(picked, m.projects[i])
		}
		job, dropped, err := queue.NewJob(avatars[m.cursor], picked)
		if err != nil {
			m.errMsg = err.Error()
			m.phase = builderPhaseProjects
			m.cursor = 0
			return m, nil
		}
		for _, name := range dropped {
			m.errMsg = fmt.Sprintf("skipped %s: no script found", name)
		}
		m.jobs = append(m.jobs, job)
		for _, i := range indexes {
			m.used[i] = true
		}
		m.selected = map[int]bool{}
		m.filter.SetValue("")

		if len(m.used) == len(m.projects) {
			return m, tea.Quit
		}
		m.phase = builderPhaseMore
	default:
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(key)
		m.cursor = 0
		return m, cmd
	}
	return m, nil
}

// filteredAvatars returns the avatars matching the filter field, in config
// order.
func (m builderModel) filteredAvatars() []string {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if needle == "" {
		return m.avatars
	}
	out := make([]string, 0, len(m.avatars))
	for _, name := range m.avatars {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
		}
	}
	return out
}

func (m builderModel) updateMore(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y":
		m.phase = builderPhaseProjects
		m.cursor = 0
		return m, nil
	case "n", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m builderModel) selectedIndexes() []int {
	out := make([]int, 0, len(m.selected))
	for i := range m.projects {
		if m.selected[i] {
			out = append(out, i)
		}
	}
	return out
}

func (m builderModel) View() string {
	var b strings.Builder

	switch m.phase {
	case builderPhaseProjects:
		b.WriteString(builderTitleStyle.Render("Select projects to submit"))
		b.WriteString("\n\n")
		for i, p := range m.projects {
			line := fmt.Sprintf("[%s] %s (%d scenes)", checkbox(m.selected[i]), p.Name, len(p.Scenes))
			switch {
			case m.used[i]:
				line = builderDoneStyle.Render(fmt.Sprintf("[queued] %s", p.Name))
			case i == m.cursor:
				line = builderSelStyle.Render(line)
			}
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n" + builderMutedStyle.Render("space toggle · a all · enter next · q quit"))
	case builderPhaseAvatar:
		b.WriteString(builderTitleStyle.Render("Select the avatar for this batch"))
		b.WriteString("\n\n")
		b.WriteString("  " + m.filter.View() + "\n\n")
		avatars := m.filteredAvatars()
		for i, name := range avatars {
			line := name
			if i == m.cursor {
				line = builderSelStyle.Render(line)
			}
			b.WriteString("  " + line + "\n")
		}
		if len(avatars) == 0 {
			b.WriteString("  " + builderMutedStyle.Render("(no matches)") + "\n")
		}
		b.WriteString("\n" + builderMutedStyle.Render("enter select · left back · esc quit"))
	case builderPhaseMore:
		b.WriteString(builderTitleStyle.Render(fmt.Sprintf("%d job(s) queued", len(m.jobs))))
		b.WriteString("\n\n")
		b.WriteString("Queue more projects under another avatar? (y/n)\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + builderErrorStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "x"
	}
	return " "
}

// runBuilder runs the interactive queue builder and returns the jobs it
// assembled, in queue order.
func runBuilder(projects []queue.ProjectScenes, avatars []string) ([]queue.Job, error) {
	p := tea.NewProgram(newBuilderModel(projects, avatars), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("queue builder: %w", err)
	}
	m, ok := final.(builderModel)
	if !ok {
		return nil, errors.New("queue builder: unexpected final model")
	}
	if m.aborted {
		return nil, errors.New("queue builder aborted")
	}
	return m.jobs, nil
}
