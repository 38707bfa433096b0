package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"custodash/api"
	"custodash/config"
	"custodash/session"
	"custodash/styles"
)

// Routes
const (
	routeLogin = iota
	routeCallback
	routeDashboard
	routeResources
	routeResourceDetail
	routePolicies
	routePolicyRun
	routeCosts
	routeServices
)

var routeTitles = map[int]string{
	routeLogin:          "Login",
	routeCallback:       "SSO Callback",
	routeDashboard:      "Dashboard",
	routeResources:      "Resources",
	routeResourceDetail: "Resource",
	routePolicies:       "Policies",
	routePolicyRun:      "Run Policy",
	routeCosts:          "Costs",
	routeServices:       "Services",
}

// navTabs are the top-level pages reachable from the navigation bar.
var navTabs = []int{routeDashboard, routeResources, routePolicies, routeCosts, routeServices}

var navKeys = map[string]int{
	"1": routeDashboard,
	"2": routeResources,
	"3": routePolicies,
	"4": routeCosts,
	"5": routeServices,
}

// Deps bundles everything the pages need to talk to the backend.
type Deps struct {
	Client *api.Client
	Creds  *session.CredentialStore
	SSO    *session.Manager
	Config *config.Config
}

// credentials returns the active key pair, or a zero value for
// SSO-only sessions where the backend resolves access itself.
func (d Deps) credentials() api.Credentials {
	creds, _ := d.Creds.Get()
	return creds
}

// Main app model
type Model struct {
	deps  Deps
	route int

	width  int
	height int

	toasts  []toast
	toastID int

	login    loginModel
	callback callbackModel
	dash     dashboardModel
	res      resourcesModel
	detail   detailModel
	policies policiesModel
	run      policyRunModel
	costs    costsModel
	services servicesModel
}

func New(deps Deps) Model {
	return Model{
		deps:     deps,
		route:    routeLogin,
		login:    newLoginModel(deps),
		callback: newCallbackModel(deps),
		dash:     newDashboardModel(deps),
		res:      newResourcesModel(deps),
		detail:   newDetailModel(deps),
		policies: newPoliciesModel(deps),
		run:      newPolicyRunModel(deps),
		costs:    newCostsModel(deps),
		services: newServicesModel(deps),
	}
}

// unlocked reports whether either authentication method is active.
func (m Model) unlocked() bool {
	if _, ok := m.deps.Creds.Get(); ok {
		return true
	}
	return m.deps.SSO.Authenticated()
}

// protectedRoute reports whether a route requires an unlocked session.
func protectedRoute(route int) bool {
	return route != routeLogin && route != routeCallback
}

// navigate switches to the requested route, bouncing locked sessions
// back to the login page.
func (m *Model) navigate(route int) tea.Cmd {
	if protectedRoute(route) && !m.unlocked() {
		m.route = routeLogin
		return m.showToast("Sign in to continue", toastError)
	}

	m.route = route
	logrus.WithField("route", routeTitles[route]).Debugln("navigated")

	switch route {
	case routeDashboard:
		return m.dash.load()
	case routeResources:
		return m.res.load()
	case routePolicies:
		return m.policies.load()
	case routeCosts:
		return m.costs.load()
	case routeServices:
		return m.services.load()
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.login.init(), initSession(m.deps.SSO))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.res.setSize(msg.Width, msg.Height)
		m.policies.setSize(msg.Width, msg.Height)
		m.services.setSize(msg.Width, msg.Height)
		return m, nil

	case sessionReadyMsg:
		m.login.ssoReady()
		if m.route == routeLogin && m.unlocked() {
			return m, m.navigate(routeDashboard)
		}
		return m, nil

	case toastExpiredMsg:
		m.expireToast(msg.id)
		return m, nil

	case loggedInMsg:
		var cmd tea.Cmd
		if msg.demo {
			cmd = m.showToast("SSO unavailable, using demo session", toastInfo)
		}
		return m, tea.Batch(cmd, m.navigate(routeDashboard))

	case startCallbackMsg:
		m.callback = newCallbackModel(m.deps)
		m.callback.provider = m.login.provider()
		m.route = routeCallback
		return m, m.callback.init()

	case loggedOutMsg:
		m.route = routeLogin
		return m, m.showToast("Signed out", toastInfo)

	case errorMsg:
		return m, m.showToast(msg.err.Error(), toastError)

	case noticeMsg:
		return m, m.showToast(msg.text, msg.level)

	case openDetailMsg:
		m.detail.show(msg.service, msg.resource)
		return m, m.navigate(routeResourceDetail)

	case openPolicyMsg:
		m.run.show(msg.policy)
		return m, m.navigate(routePolicyRun)

	case tea.KeyMsg:
		// Global keybindings
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+d":
			if m.unlocked() {
				return m, logout(m.deps)
			}
		case "esc":
			switch m.route {
			case routeResourceDetail:
				return m, m.navigate(routeResources)
			case routePolicyRun:
				return m, m.navigate(routePolicies)
			case routeCallback:
				return m, m.navigate(routeLogin)
			}
		}

		if route, ok := navKeys[msg.String()]; ok && m.unlocked() && !m.typing() {
			return m, m.navigate(route)
		}
		if msg.String() == "q" && !m.typing() && m.route != routeCallback {
			return m, tea.Quit
		}
	}

	return m.updateRoute(msg)
}

// typing reports whether the focused page owns a text input, so plain
// letters must not trigger global shortcuts.
func (m Model) typing() bool {
	switch m.route {
	case routeLogin:
		return m.login.typing()
	case routeCallback:
		return true
	case routeResources:
		return m.res.typing()
	case routePolicies:
		return m.policies.typing()
	}
	return false
}

func (m Model) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route {
	case routeLogin:
		m.login, cmd = m.login.update(msg)
	case routeCallback:
		m.callback, cmd = m.callback.update(msg)
	case routeDashboard:
		m.dash, cmd = m.dash.update(msg)
	case routeResources:
		m.res, cmd = m.res.update(msg)
	case routeResourceDetail:
		m.detail, cmd = m.detail.update(msg)
	case routePolicies:
		m.policies, cmd = m.policies.update(msg)
	case routePolicyRun:
		m.run, cmd = m.run.update(msg)
	case routeCosts:
		m.costs, cmd = m.costs.update(msg)
	case routeServices:
		m.services, cmd = m.services.update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var page string
	switch m.route {
	case routeLogin:
		page = m.login.view()
	case routeCallback:
		page = m.callback.view()
	case routeDashboard:
		page = m.dash.view()
	case routeResources:
		page = m.res.view()
	case routeResourceDetail:
		page = m.detail.view()
	case routePolicies:
		page = m.policies.view()
	case routePolicyRun:
		page = m.run.view()
	case routeCosts:
		page = m.costs.view()
	case routeServices:
		page = m.services.view()
	}

	sections := []string{}
	if protectedRoute(m.route) {
		sections = append(sections, m.navView())
	}
	sections = append(sections, page)
	if t := m.toastView(); t != "" {
		sections = append(sections, t)
	}

	return styles.FullPageStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) navView() string {
	tabs := make([]string, 0, len(navTabs)+1)
	for i, route := range navTabs {
		label := routeTitles[route]
		// Detail pages highlight their parent tab
		active := m.route == route ||
			(route == routeResources && m.route == routeResourceDetail) ||
			(route == routePolicies && m.route == routePolicyRun)
		if active {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabStyle.Render(strconv.Itoa(i+1)+" "+label))
		}
	}

	who := styles.MutedStyle.Render(m.identity())
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	gap := m.width - lipgloss.Width(bar) - lipgloss.Width(who) - 4
	if gap < 1 {
		gap = 1
	}

	return bar + strings.Repeat(" ", gap) + who
}

func (m Model) identity() string {
	if user := m.deps.SSO.User(); user != nil {
		return user.Email + " (" + user.Role + ")"
	}
	if creds, ok := m.deps.Creds.Get(); ok {
		return "keys:" + creds.Region
	}
	return ""
}
