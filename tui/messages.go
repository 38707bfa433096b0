package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"custodash/api"
	"custodash/session"
)

const requestTimeout = 30 * time.Second

// sessionReadyMsg signals that stored SSO state has been revalidated.
type sessionReadyMsg struct{}

// loggedInMsg signals a completed login. demo is set when the session
// came from the demo fallback rather than a real token exchange.
type loggedInMsg struct {
	demo bool
}

type loggedOutMsg struct{}

// startCallbackMsg moves the UI to the SSO code entry page after the
// browser hand-off.
type startCallbackMsg struct{}

type errorMsg struct {
	err error
}

type noticeMsg struct {
	text  string
	level toastLevel
}

// openDetailMsg asks the root model to show a single resource.
type openDetailMsg struct {
	service  string
	resource api.Resource
}

// openPolicyMsg asks the root model to show a policy's run page.
type openPolicyMsg struct {
	policy api.Policy
}

// notifyError surfaces a fetch failure as a transient toast, in addition
// to the page's own error panel.
func notifyError(err error) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{text: err.Error(), level: toastError}
	}
}

func initSession(mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		mgr.Initialize(ctx)
		return sessionReadyMsg{}
	}
}

func logout(deps Deps) tea.Cmd {
	return func() tea.Msg {
		deps.Creds.Clear()
		if err := deps.SSO.Logout(); err != nil {
			return errorMsg{err: err}
		}
		return loggedOutMsg{}
	}
}
