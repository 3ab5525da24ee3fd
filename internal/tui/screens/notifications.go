package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/cyclence/internal/config"
	"github.com/emilianohg/cyclence/internal/models"
	"github.com/emilianohg/cyclence/internal/tracker"
)

type Notifications struct {
	tracker *tracker.Tracker
	cfg     *config.Config
	width   int
	height  int

	notes   []models.Notification
	cursor  int
	loading bool
	err     error
	message string
}

func NewNotifications(t *tracker.Tracker, cfg *config.Config) *Notifications {
	return &Notifications{tracker: t, cfg: cfg}
}

func (n *Notifications) SetSize(width, height int) {
	n.width = width
	n.height = height
}

type notificationsDataMsg struct {
	notes []models.Notification
	err   error
}

func (n *Notifications) Init() tea.Cmd {
	n.loading = true
	n.message = ""
	return n.loadData
}

func (n *Notifications) loadData() tea.Msg {
	notes, err := n.tracker.Notifications(n.cfg.User)
	return notificationsDataMsg{notes: notes, err: err}
}

func (n *Notifications) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notificationsDataMsg:
		n.loading = false
		n.err = msg.err
		n.notes = msg.notes
		if n.cursor >= len(n.notes) {
			n.cursor = max(0, len(n.notes)-1)
		}
		return nil

	case RefreshMsg:
		return n.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if n.cursor > 0 {
				n.cursor--
			}
		case "down", "j":
			if n.cursor < len(n.notes)-1 {
				n.cursor++
			}
		case "y":
			return n.respond(true)
		case "x":
			return n.respond(false)
		case "q", "esc":
			return Navigate("board")
		}
	}
	return nil
}

func (n *Notifications) respond(accept bool) tea.Cmd {
	if len(n.notes) == 0 {
		return nil
	}
	note := n.notes[n.cursor]
	if accept && !note.Kind.Actionable() {
		return nil
	}

	if err := n.tracker.Respond(n.cfg.User, note.ID, accept); err != nil {
		n.err = err
		return nil
	}
	if accept {
		n.message = "Accepted"
	} else {
		n.message = "Dismissed"
	}
	return n.loadData
}

func (n *Notifications) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("NOTIFICATIONS"))
	b.WriteString("\n\n")

	if n.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if n.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", n.err)))
		b.WriteString("\n\n")
		n.err = nil
	}

	if n.message != "" {
		b.WriteString(SuccessStyle.Render(n.message))
		b.WriteString("\n\n")
	}

	if len(n.notes) == 0 {
		b.WriteString(DimStyle.Render("Nothing new."))
		b.WriteString("\n")
	}

	for i, note := range n.notes {
		cursor := "  "
		style := NormalStyle
		if i == n.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		switch note.Kind {
		case models.KindError:
			style = ErrorStyle
		case models.KindBefriend, models.KindShare:
			style = WarningStyle
		}

		line := fmt.Sprintf("%s%s  %s", cursor, note.CreatedAt.Local().Format("Jan 02 15:04"), note.Message)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[y] Accept  [x] Dismiss  [q] Back"))
	return b.String()
}
