package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/cyclence/internal/config"
	"github.com/emilianohg/cyclence/internal/tracker"
	"github.com/emilianohg/cyclence/internal/tui/screens"
)

type Screen int

const (
	ScreenBoard Screen = iota
	ScreenAddTask
	ScreenNotifications
)

type App struct {
	tracker       *tracker.Tracker
	cfg           *config.Config
	currentScreen Screen
	width         int
	height        int

	board         *screens.Board
	addTask       *screens.AddTask
	notifications *screens.Notifications
}

func NewApp(t *tracker.Tracker, cfg *config.Config) *App {
	return &App{
		tracker:       t,
		cfg:           cfg,
		currentScreen: ScreenBoard,
		board:         screens.NewBoard(t, cfg),
		addTask:       screens.NewAddTask(t, cfg),
		notifications: screens.NewNotifications(t, cfg),
	}
}

func (a *App) Init() tea.Cmd {
	return a.board.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenBoard && a.board.Idle() {
				return a, tea.Quit
			}
			// Other screens use 'q' to go back, the form types it
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.board.SetSize(msg.Width, msg.Height)
		a.addTask.SetSize(msg.Width, msg.Height)
		a.notifications.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenBoard:
		cmd = a.board.Update(msg)
	case ScreenAddTask:
		cmd = a.addTask.Update(msg)
	case ScreenNotifications:
		cmd = a.notifications.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "board":
		a.currentScreen = ScreenBoard
		return a, a.board.Init()
	case "add":
		a.currentScreen = ScreenAddTask
		return a, a.addTask.Init()
	case "notifications":
		a.currentScreen = ScreenNotifications
		return a, a.notifications.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenBoard:
		content = a.board.View()
	case ScreenAddTask:
		content = a.addTask.View()
	case ScreenNotifications:
		content = a.notifications.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

func Run(t *tracker.Tracker, cfg *config.Config) error {
	app := NewApp(t, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
