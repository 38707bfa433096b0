package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7D56F4") // Purple
	Secondary = lipgloss.Color("#00F5FF") // Cyan
	Success   = lipgloss.Color("#00E680") // Green
	Warning   = lipgloss.Color("#FFB800") // Yellow
	Error     = lipgloss.Color("#FF4D4D") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#E5E7EB") // Light Gray

	// Layout constants
	MinWidth  = 80
	MinHeight = 24

	// Base styles
	BaseStyle = lipgloss.NewStyle().
			Foreground(Text)

	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Padding(0, 1).
			Bold(true)

	// Text styles
	TextStyle = lipgloss.NewStyle().
			Foreground(Text)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	// Box styles
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			Margin(1, 0)

	ErrorBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(1, 2).
			Margin(1, 0)

	// Navigation tab styles
	TabStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Padding(0, 2).
			Bold(true)

	// Card style for dashboard summary tiles
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 2).
			Margin(0, 1)

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	TableRowStyle = lipgloss.NewStyle().
			Foreground(Text)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Primary).
				Bold(true)

	// Bar chart style
	BarStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	// Toast styles
	ToastInfoStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Padding(0, 1)

	ToastErrorStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Error).
			Padding(0, 1)

	ToastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#052E16")).
				Background(Success).
				Padding(0, 1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Foreground(Text).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Padding(0, 1)

	// Help text style
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)

	// Full page content style
	FullPageStyle = lipgloss.NewStyle().
			Padding(1, 2)
)
