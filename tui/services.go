package tui

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/api"
	"custodash/styles"
)

type servicesModel struct {
	deps Deps

	viewport viewport.Model
	ready    bool
	spinner  spinner.Model
	loading  bool
	errText  string
	seq      int
}

type terraformMsg struct {
	seq       int
	resources map[string]any
	err       error
}

func newServicesModel(deps Deps) servicesModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return servicesModel{deps: deps, spinner: s, viewport: viewport.New(80, 20)}
}

func (s *servicesModel) setSize(width, height int) {
	s.viewport.Width = max(width-6, 20)
	s.viewport.Height = max(height-10, 5)
}

func (s *servicesModel) load() tea.Cmd {
	s.loading = true
	s.errText = ""
	s.seq++
	return tea.Batch(s.spinner.Tick, fetchTerraform(s.deps.Client, s.deps.credentials(), s.seq))
}

func fetchTerraform(client *api.Client, creds api.Credentials, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resources, err := client.TerraformResources(ctx, creds)
		return terraformMsg{seq: seq, resources: resources, err: err}
	}
}

func (s servicesModel) update(msg tea.Msg) (servicesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case terraformMsg:
		if msg.seq != s.seq {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.errText = msg.err.Error()
			return s, notifyError(msg.err)
		}
		pretty, err := json.MarshalIndent(msg.resources, "", "  ")
		if err != nil {
			s.errText = err.Error()
			return s, nil
		}
		s.viewport.SetContent(string(pretty))
		s.ready = true
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return s, s.load()
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s servicesModel) view() string {
	sections := []string{
		"",
		styles.TitleStyle.Render("Terraform-managed resources"),
		"",
	}

	switch {
	case s.loading:
		sections = append(sections, s.spinner.View()+" Loading Terraform resources...")
	case s.errText != "":
		sections = append(sections, styles.ErrorBox.Render(s.errText))
	case s.ready:
		sections = append(sections, s.viewport.View())
	default:
		sections = append(sections, styles.MutedStyle.Render("No data loaded yet."))
	}

	sections = append(sections, styles.HelpStyle.Render("↑/↓ scroll · r refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
