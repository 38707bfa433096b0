package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/api"
	"custodash/styles"
)

const allCategories = "all"

var policyColumns = []table.Column{
	{Title: "Name", Width: 28},
	{Title: "Category", Width: 14},
	{Title: "Resource", Width: 12},
	{Title: "Description", Width: 44},
}

type policiesModel struct {
	deps Deps

	items      []api.Policy
	visible    []api.Policy
	categories []string
	catIdx     int

	search    textinput.Model
	searching bool

	table   table.Model
	spinner spinner.Model
	loading bool
	errText string
	seq     int
}

type policiesMsg struct {
	seq        int
	policies   []api.Policy
	categories []string
	err        error
}

func newPoliciesModel(deps Deps) policiesModel {
	search := textinput.New()
	search.Placeholder = "filter policies"
	search.CharLimit = 64
	search.Width = 30
	search.Prompt = "/ "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	t := table.New(table.WithColumns(policyColumns), table.WithFocused(true))
	st := table.DefaultStyles()
	st.Header = styles.TableHeaderStyle
	st.Selected = styles.SelectedRowStyle
	t.SetStyles(st)

	return policiesModel{
		deps:       deps,
		search:     search,
		spinner:    s,
		table:      t,
		categories: []string{allCategories},
	}
}

func (p policiesModel) typing() bool {
	return p.searching
}

func (p *policiesModel) setSize(width, height int) {
	p.table.SetHeight(max(height-11, 5))
}

func (p *policiesModel) load() tea.Cmd {
	p.loading = true
	p.errText = ""
	p.seq++
	return tea.Batch(p.spinner.Tick, fetchPolicies(p.deps.Client, p.seq))
}

func fetchPolicies(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		policies, err := client.ListPolicies(ctx)
		if err != nil {
			return policiesMsg{seq: seq, err: err}
		}

		msg := policiesMsg{seq: seq, policies: policies}
		if categories, err := client.PolicyCategories(ctx); err == nil {
			msg.categories = categories
		}
		return msg
	}
}

func (p policiesModel) update(msg tea.Msg) (policiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case policiesMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			p.errText = msg.err.Error()
			return p, notifyError(msg.err)
		}
		p.items = msg.policies
		p.categories = append([]string{allCategories}, msg.categories...)
		p.catIdx = 0
		p.refresh()
		return p, nil

	case tea.KeyMsg:
		if p.searching {
			switch msg.String() {
			case "esc", "enter":
				p.searching = false
				p.search.Blur()
				return p, nil
			}
			var cmd tea.Cmd
			p.search, cmd = p.search.Update(msg)
			p.refresh()
			return p, cmd
		}

		switch msg.String() {
		case "/":
			p.searching = true
			return p, p.search.Focus()
		case "r":
			return p, p.load()
		case "tab", "right":
			p.catIdx = (p.catIdx + 1) % len(p.categories)
			p.refresh()
			return p, nil
		case "shift+tab", "left":
			p.catIdx = (p.catIdx + len(p.categories) - 1) % len(p.categories)
			p.refresh()
			return p, nil
		case "enter":
			if row := p.table.Cursor(); row >= 0 && row < len(p.visible) {
				policy := p.visible[row]
				return p, func() tea.Msg { return openPolicyMsg{policy: policy} }
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

// refresh rebuilds the table through the category and search filters.
// Search matches name, description and resource type.
func (p *policiesModel) refresh() {
	query := strings.ToLower(strings.TrimSpace(p.search.Value()))
	category := p.categories[p.catIdx]

	p.visible = p.visible[:0]
	rows := []table.Row{}
	for _, policy := range p.items {
		if category != allCategories && policy.Category != category {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(policy.Name + " " + policy.Description + " " + policy.ResourceType)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		p.visible = append(p.visible, policy)
		rows = append(rows, table.Row{policy.Name, policy.Category, policy.ResourceType, policy.Description})
	}

	p.table.SetRows(rows)
	p.table.SetCursor(0)
}

func (p policiesModel) view() string {
	tabs := make([]string, len(p.categories))
	for i, category := range p.categories {
		if i == p.catIdx {
			tabs[i] = styles.ActiveTabStyle.Render(category)
		} else {
			tabs[i] = styles.TabStyle.Render(category)
		}
	}

	sections := []string{"", lipgloss.JoinHorizontal(lipgloss.Top, tabs...), ""}

	if p.searching || p.search.Value() != "" {
		sections = append(sections, p.search.View())
	}

	switch {
	case p.loading:
		sections = append(sections, p.spinner.View()+" Loading policies...")
	case p.errText != "":
		sections = append(sections, styles.ErrorBox.Render(p.errText))
	case len(p.visible) == 0:
		sections = append(sections, styles.MutedStyle.Render("No matching policies."))
	default:
		sections = append(sections, p.table.View())
		sections = append(sections, styles.MutedStyle.Render(fmt.Sprintf("%d of %d policies", len(p.visible), len(p.items))))
	}

	sections = append(sections, styles.HelpStyle.Render("tab category · / search · enter open · r refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
