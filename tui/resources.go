package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/api"
	"custodash/styles"
)

var resourceServices = []string{"ec2", "s3", "rds", "lambda"}

var resourceColumns = map[string][]table.Column{
	"ec2": {
		{Title: "ID", Width: 20},
		{Title: "Type", Width: 12},
		{Title: "State", Width: 10},
		{Title: "Public IP", Width: 16},
		{Title: "Private IP", Width: 16},
	},
	"s3": {
		{Title: "Name", Width: 40},
		{Title: "Created", Width: 26},
	},
	"rds": {
		{Title: "ID", Width: 24},
		{Title: "Engine", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Size", Width: 16},
	},
	"lambda": {
		{Title: "Name", Width: 32},
		{Title: "Runtime", Width: 14},
		{Title: "Memory", Width: 8},
		{Title: "Modified", Width: 26},
	},
}

type resourcesModel struct {
	deps Deps

	active  int
	items   []api.Resource
	visible []api.Resource

	tagPairs   []string
	tagIdx     int
	activeTags map[string]string

	search    textinput.Model
	searching bool

	table   table.Model
	spinner spinner.Model
	loading bool
	errText string
	seq     int
	height  int
}

type resourcesMsg struct {
	seq     int
	service string
	list    api.ResourceList
	tags    map[string][]string
	err     error
}

func newResourcesModel(deps Deps) resourcesModel {
	search := textinput.New()
	search.Placeholder = "filter resources"
	search.CharLimit = 64
	search.Width = 30
	search.Prompt = "/ "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	t := table.New(table.WithColumns(resourceColumns["ec2"]), table.WithFocused(true))
	st := table.DefaultStyles()
	st.Header = styles.TableHeaderStyle
	st.Selected = styles.SelectedRowStyle
	t.SetStyles(st)

	return resourcesModel{
		deps:       deps,
		search:     search,
		spinner:    s,
		table:      t,
		activeTags: map[string]string{},
	}
}

func (r resourcesModel) service() string {
	return resourceServices[r.active]
}

func (r resourcesModel) typing() bool {
	return r.searching
}

func (r *resourcesModel) setSize(width, height int) {
	r.height = height
	r.table.SetHeight(max(height-12, 5))
}

func (r *resourcesModel) load() tea.Cmd {
	r.loading = true
	r.errText = ""
	r.activeTags = map[string]string{}
	r.tagPairs = nil
	r.tagIdx = 0
	r.seq++
	return tea.Batch(r.spinner.Tick, fetchResources(r.deps.Client, r.service(), r.deps.credentials(), r.seq))
}

func fetchResources(client *api.Client, service string, creds api.Credentials, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		list, err := client.Resources(ctx, service, creds)
		if err != nil {
			return resourcesMsg{seq: seq, service: service, err: err}
		}

		msg := resourcesMsg{seq: seq, service: service, list: list}
		if service == "ec2" {
			// Tag filters only exist for EC2
			if tags, err := client.ResourceTags(ctx, service, creds); err == nil {
				msg.tags = tags
			}
		}
		return msg
	}
}

func (r resourcesModel) update(msg tea.Msg) (resourcesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(msg)
		return r, cmd

	case resourcesMsg:
		if msg.seq != r.seq {
			return r, nil
		}
		r.loading = false
		if msg.err != nil {
			r.errText = msg.err.Error()
			return r, notifyError(msg.err)
		}
		r.items = msg.list.ForService(msg.service)
		r.tagPairs = flattenTags(msg.tags)
		r.refresh()
		return r, nil

	case tea.KeyMsg:
		if r.searching {
			switch msg.String() {
			case "esc", "enter":
				r.searching = false
				r.search.Blur()
				return r, nil
			}
			var cmd tea.Cmd
			r.search, cmd = r.search.Update(msg)
			r.refresh()
			return r, cmd
		}

		switch msg.String() {
		case "tab", "right":
			r.active = (r.active + 1) % len(resourceServices)
			return r, r.load()
		case "shift+tab", "left":
			r.active = (r.active + len(resourceServices) - 1) % len(resourceServices)
			return r, r.load()
		case "/":
			r.searching = true
			return r, r.search.Focus()
		case "r":
			return r, r.load()
		case "[":
			if len(r.tagPairs) > 0 {
				r.tagIdx = (r.tagIdx + len(r.tagPairs) - 1) % len(r.tagPairs)
			}
			return r, nil
		case "]":
			if len(r.tagPairs) > 0 {
				r.tagIdx = (r.tagIdx + 1) % len(r.tagPairs)
			}
			return r, nil
		case "t":
			r.toggleTag()
			return r, nil
		case "enter":
			if row := r.table.Cursor(); row >= 0 && row < len(r.visible) {
				service, resource := r.service(), r.visible[row]
				return r, func() tea.Msg {
					return openDetailMsg{service: service, resource: resource}
				}
			}
			return r, nil
		}
	}

	var cmd tea.Cmd
	r.table, cmd = r.table.Update(msg)
	return r, cmd
}

// toggleTag flips the highlighted key=value filter on or off.
func (r *resourcesModel) toggleTag() {
	if r.service() != "ec2" || len(r.tagPairs) == 0 {
		return
	}
	key, value, _ := strings.Cut(r.tagPairs[r.tagIdx], "=")
	if r.activeTags[key] == value {
		delete(r.activeTags, key)
	} else {
		r.activeTags[key] = value
	}
	r.refresh()
}

// refresh rebuilds the table from the raw items through the active
// search and tag filters.
func (r *resourcesModel) refresh() {
	query := strings.ToLower(strings.TrimSpace(r.search.Value()))

	r.visible = r.visible[:0]
	rows := []table.Row{}
	for _, item := range r.items {
		if !matchesTags(item, r.activeTags) {
			continue
		}
		row := rowFor(r.service(), item)
		if query != "" && !strings.Contains(strings.ToLower(strings.Join(row, " ")), query) {
			continue
		}
		r.visible = append(r.visible, item)
		rows = append(rows, row)
	}

	r.table.SetColumns(resourceColumns[r.service()])
	r.table.SetRows(rows)
	r.table.SetCursor(0)
}

func matchesTags(item api.Resource, filters map[string]string) bool {
	if len(filters) == 0 {
		return true
	}
	tags := item.Tags()
	for key, value := range filters {
		if tags[key] != value {
			return false
		}
	}
	return true
}

func rowFor(service string, item api.Resource) table.Row {
	switch service {
	case "ec2":
		return table.Row{item.Str("id"), item.Str("type"), item.Str("state"), item.Str("public_ip"), item.Str("private_ip")}
	case "s3":
		return table.Row{item.Str("name"), item.Str("creation_date")}
	case "rds":
		return table.Row{item.Str("id"), item.Str("engine"), item.Str("status"), item.Str("size")}
	case "lambda":
		return table.Row{item.Str("name"), item.Str("runtime"), item.Str("memory"), item.Str("last_modified")}
	}
	return nil
}

func flattenTags(tags map[string][]string) []string {
	var pairs []string
	for key, values := range tags {
		for _, value := range values {
			pairs = append(pairs, key+"="+value)
		}
	}
	sort.Strings(pairs)
	return pairs
}

func (r resourcesModel) view() string {
	tabs := make([]string, len(resourceServices))
	for i, svc := range resourceServices {
		label := strings.ToUpper(svc)
		if i == r.active {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.TabStyle.Render(label)
		}
	}

	sections := []string{"", lipgloss.JoinHorizontal(lipgloss.Top, tabs...), ""}

	if r.searching || r.search.Value() != "" {
		sections = append(sections, r.search.View())
	}

	if r.service() == "ec2" && len(r.tagPairs) > 0 {
		sections = append(sections, r.tagView())
	}

	switch {
	case r.loading:
		sections = append(sections, r.spinner.View()+" Loading "+strings.ToUpper(r.service())+" resources...")
	case r.errText != "":
		sections = append(sections, styles.ErrorBox.Render(r.errText))
	case len(r.visible) == 0:
		sections = append(sections, styles.MutedStyle.Render("No matching resources."))
	default:
		sections = append(sections, r.table.View())
		sections = append(sections, styles.MutedStyle.Render(fmt.Sprintf("%d of %d resources", len(r.visible), len(r.items))))
	}

	sections = append(sections, styles.HelpStyle.Render("tab switch service · / search · [ ] t tag filter · enter details · r refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r resourcesModel) tagView() string {
	shown := make([]string, 0, len(r.tagPairs))
	for i, pair := range r.tagPairs {
		key, value, _ := strings.Cut(pair, "=")
		active := r.activeTags[key] == value
		label := pair
		if active {
			label = "✓" + label
		}
		if i == r.tagIdx {
			shown = append(shown, styles.FocusedInputStyle.Render(label))
		} else if active {
			shown = append(shown, styles.SuccessStyle.Render(label))
		} else {
			shown = append(shown, styles.MutedStyle.Render(label))
		}
	}
	return strings.Join(shown, "  ")
}
