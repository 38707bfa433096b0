package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"custodash/api"
	"custodash/config"
	"custodash/session"
	"custodash/tui"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	storage, err := session.NewStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session storage: %v\n", err)
		os.Exit(1)
	}

	client := api.New(cfg.APIURL, storage)
	deps := tui.Deps{
		Client: client,
		Creds:  session.NewCredentialStore(),
		SSO:    session.NewManager(client, storage, cfg.DemoMode),
		Config: cfg,
	}

	logrus.WithField("api_url", cfg.APIURL).Debugln("starting dashboard")

	p := tea.NewProgram(tui.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
