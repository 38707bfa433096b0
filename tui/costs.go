package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"custodash/api"
	"custodash/styles"
)

var costServices = []string{"ec2", "s3", "rds", "lambda", "ebs", "cloudwatch", "dynamodb"}

var costPeriods = []string{"1m", "3m", "6m"}

var usd = message.NewPrinter(language.AmericanEnglish)

type costsModel struct {
	deps Deps

	service int
	period  int
	data    api.CostData

	spinner spinner.Model
	loading bool
	errText string
	seq     int
}

type costMsg struct {
	seq  int
	data api.CostData
	err  error
}

func newCostsModel(deps Deps) costsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return costsModel{deps: deps, spinner: s}
}

func (c costsModel) periodKey() string {
	return costPeriods[c.period]
}

func (c *costsModel) load() tea.Cmd {
	c.loading = true
	c.errText = ""
	c.seq++
	return tea.Batch(c.spinner.Tick,
		fetchCosts(c.deps.Client, costServices[c.service], c.periodKey(), c.deps.credentials(), c.seq))
}

func fetchCosts(client *api.Client, service, period string, creds api.Credentials, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := client.ServiceCost(ctx, service, period, creds)
		return costMsg{seq: seq, data: data, err: err}
	}
}

func (c costsModel) update(msg tea.Msg) (costsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case costMsg:
		if msg.seq != c.seq {
			return c, nil
		}
		c.loading = false
		if msg.err != nil {
			c.errText = msg.err.Error()
			return c, notifyError(msg.err)
		}
		c.data = msg.data
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "right":
			c.service = (c.service + 1) % len(costServices)
			return c, c.load()
		case "shift+tab", "left":
			c.service = (c.service + len(costServices) - 1) % len(costServices)
			return c, c.load()
		case "p":
			c.period = (c.period + 1) % len(costPeriods)
			return c, c.load()
		case "r":
			return c, c.load()
		}
	}
	return c, nil
}

func (c costsModel) view() string {
	tabs := make([]string, len(costServices))
	for i, svc := range costServices {
		label := strings.ToUpper(svc)
		if i == c.service {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.TabStyle.Render(label)
		}
	}

	periods := make([]string, len(costPeriods))
	for i, p := range costPeriods {
		if i == c.period {
			periods[i] = styles.FocusedInputStyle.Render("[" + p + "]")
		} else {
			periods[i] = styles.MutedStyle.Render(" " + p + " ")
		}
	}

	sections := []string{
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"Period: " + strings.Join(periods, " "),
		"",
	}

	switch {
	case c.loading:
		sections = append(sections, c.spinner.View()+" Loading cost data...")
	case c.errText != "":
		sections = append(sections, styles.ErrorBox.Render(c.errText))
	default:
		sections = append(sections, c.chartView())
	}

	sections = append(sections, styles.HelpStyle.Render("tab switch service · p switch period · r refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (c costsModel) chartView() string {
	period, ok := c.data[c.periodKey()]
	if !ok {
		return styles.MutedStyle.Render("No cost data available.")
	}

	total := styles.SuccessStyle.Render(usd.Sprintf("Total: $%.2f", period.Total()))
	if len(period.DataPoints) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.MutedStyle.Render("No cost data points for this period."),
			total)
	}

	maxCost := 0.0
	for _, point := range period.DataPoints {
		if point.Amount() > maxCost {
			maxCost = point.Amount()
		}
	}
	if maxCost == 0 {
		maxCost = 1
	}

	var b strings.Builder
	for _, point := range period.DataPoints {
		width := int(point.Amount() / maxCost * 32)
		if width < 1 && point.Amount() > 0 {
			width = 1
		}
		b.WriteString(usd.Sprintf("%-12s %s %.2f\n",
			point.StartDate,
			styles.BarStyle.Render(strings.Repeat("█", width)),
			point.Amount()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TableHeaderStyle.Render(strings.ToUpper(costServices[c.service])+" costs, "+c.periodKey()),
		b.String(),
		total)
}
