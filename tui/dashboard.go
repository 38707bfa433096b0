package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/api"
	"custodash/styles"
)

type dashboardModel struct {
	deps Deps

	summary map[string]api.ServiceSummary
	spinner spinner.Model
	loading bool
	errText string
	seq     int
}

type summaryMsg struct {
	seq     int
	summary map[string]api.ServiceSummary
	err     error
}

func newDashboardModel(deps Deps) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return dashboardModel{deps: deps, spinner: s}
}

func (d *dashboardModel) load() tea.Cmd {
	d.loading = true
	d.errText = ""
	d.seq++
	return tea.Batch(d.spinner.Tick, fetchSummary(d.deps.Client, d.deps.credentials(), d.seq))
}

func fetchSummary(client *api.Client, creds api.Credentials, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		summary, err := client.ResourceSummary(ctx, creds)
		return summaryMsg{seq: seq, summary: summary, err: err}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case summaryMsg:
		if msg.seq != d.seq {
			return d, nil
		}
		d.loading = false
		if msg.err != nil {
			d.errText = msg.err.Error()
			return d, notifyError(msg.err)
		}
		d.summary = msg.summary
		return d, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return d, d.load()
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.loading {
		return "\n" + d.spinner.View() + " Loading resource summary..."
	}
	if d.errText != "" {
		return styles.ErrorBox.Render(d.errText)
	}
	if len(d.summary) == 0 {
		return "\n" + styles.MutedStyle.Render("No resources found.")
	}

	services := make([]string, 0, len(d.summary))
	for name := range d.summary {
		services = append(services, name)
	}
	sort.Strings(services)

	cards := make([]string, 0, len(services))
	maxCount := 1
	for _, name := range services {
		s := d.summary[name]
		if s.Count > maxCount {
			maxCount = s.Count
		}
		body := fmt.Sprintf("%s\n%d total\n%s %s",
			styles.TableHeaderStyle.Render(strings.ToUpper(name)),
			s.Count,
			styles.SuccessStyle.Render(fmt.Sprintf("%d up", s.Running)),
			styles.MutedStyle.Render(fmt.Sprintf("%d down", s.Stopped)))
		if s.Error != "" {
			body += "\n" + styles.ErrorStyle.Render(s.Error)
		}
		cards = append(cards, styles.CardStyle.Render(body))
	}

	var chart strings.Builder
	for _, name := range services {
		s := d.summary[name]
		width := s.Count * 30 / maxCount
		if width < 1 && s.Count > 0 {
			width = 1
		}
		chart.WriteString(fmt.Sprintf("%-8s %s %d\n",
			name,
			styles.BarStyle.Render(strings.Repeat("█", width)),
			s.Count))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
		styles.TableHeaderStyle.Render("Resources by service"),
		chart.String(),
		styles.HelpStyle.Render("r refresh · enter a number to switch pages · ctrl+d sign out"),
	)
}
