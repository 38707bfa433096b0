package tui

import (
	"sort"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"custodash/api"
	"custodash/styles"
)

type detailModel struct {
	deps     Deps
	service  string
	resource api.Resource
}

func newDetailModel(deps Deps) detailModel {
	return detailModel{deps: deps}
}

func (d *detailModel) show(service string, resource api.Resource) {
	d.service = service
	d.resource = resource
}

func (d detailModel) update(msg tea.Msg) (detailModel, tea.Cmd) {
	return d, nil
}

func (d detailModel) view() string {
	title := strings.ToUpper(d.service) + " resource"
	if name := d.resource.Str("name"); name != "" {
		title += ": " + name
	} else if id := d.resource.Str("id"); id != "" {
		title += ": " + id
	}

	keys := make([]string, 0, len(d.resource))
	for key := range d.resource {
		if key == "tags" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := d.resource.Str(key)
		if value == "" {
			value = "-"
		}
		b.WriteString(styles.MutedStyle.Render(pad(key, 16)) + styles.TextStyle.Render(value) + "\n")
	}

	sections := []string{
		"",
		styles.TitleStyle.Render(title),
		styles.BoxStyle.Render(strings.TrimRight(b.String(), "\n")),
	}

	if tags := d.resource.Tags(); len(tags) > 0 {
		tagKeys := make([]string, 0, len(tags))
		for key := range tags {
			tagKeys = append(tagKeys, key)
		}
		sort.Strings(tagKeys)

		var tb strings.Builder
		for _, key := range tagKeys {
			tb.WriteString(styles.MutedStyle.Render(pad(key, 16)) + styles.TextStyle.Render(tags[key]) + "\n")
		}
		sections = append(sections,
			styles.TableHeaderStyle.Render("Tags"),
			styles.BoxStyle.Render(strings.TrimRight(tb.String(), "\n")))
	}

	sections = append(sections, styles.HelpStyle.Render("esc back to resources"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-n)
}
