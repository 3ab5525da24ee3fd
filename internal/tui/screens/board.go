package screens

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/cyclence/internal/config"
	"github.com/emilianohg/cyclence/internal/humanize"
	"github.com/emilianohg/cyclence/internal/recurrence"
	"github.com/emilianohg/cyclence/internal/tracker"
)

type boardMode int

const (
	boardModeList boardMode = iota
	boardModeDetail
	boardModeDelete
)

type Board struct {
	tracker *tracker.Tracker
	cfg     *config.Config
	width   int
	height  int

	board   *tracker.Board
	cursor  int
	mode    boardMode
	loading bool
	err     error
	message string
}

func NewBoard(t *tracker.Tracker, cfg *config.Config) *Board {
	return &Board{
		tracker: t,
		cfg:     cfg,
		loading: true,
	}
}

func (b *Board) SetSize(width, height int) {
	b.width = width
	b.height = height
}

type boardDataMsg struct {
	board *tracker.Board
	err   error
}

func (b *Board) Init() tea.Cmd {
	b.loading = true
	b.mode = boardModeList
	return b.loadData
}

func (b *Board) loadData() tea.Msg {
	board, err := b.tracker.Board(b.cfg.User)
	return boardDataMsg{board: board, err: err}
}

func (b *Board) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case boardDataMsg:
		b.loading = false
		b.err = msg.err
		b.board = msg.board
		if b.cursor >= len(b.entries()) {
			b.cursor = max(0, len(b.entries())-1)
		}
		return nil

	case RefreshMsg:
		return b.Init()

	case tea.KeyMsg:
		return b.handleKey(msg)
	}
	return nil
}

// Idle reports whether the board shows the plain task list.
func (b *Board) Idle() bool {
	return b.mode == boardModeList
}

func (b *Board) entries() []tracker.Entry {
	if b.board == nil {
		return nil
	}
	return b.board.Entries
}

func (b *Board) selected() (tracker.Entry, bool) {
	entries := b.entries()
	if len(entries) == 0 {
		return tracker.Entry{}, false
	}
	return entries[b.cursor], true
}

func (b *Board) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch b.mode {
	case boardModeList:
		return b.handleListKey(msg)
	case boardModeDetail:
		switch msg.String() {
		case "q", "esc", "enter":
			b.mode = boardModeList
		case "c":
			b.mode = boardModeList
			return b.completeSelected()
		}
	case boardModeDelete:
		return b.handleDeleteKey(msg)
	}
	return nil
}

func (b *Board) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.entries())-1 {
			b.cursor++
		}
	case "enter":
		if _, ok := b.selected(); ok {
			b.mode = boardModeDetail
		}
	case "c":
		return b.completeSelected()
	case "d":
		if _, ok := b.selected(); ok {
			b.mode = boardModeDelete
		}
	case "a":
		return Navigate("add")
	case "n":
		return Navigate("notifications")
	case "r":
		b.message = ""
		return b.Init()
	}
	return nil
}

func (b *Board) completeSelected() tea.Cmd {
	entry, ok := b.selected()
	if !ok {
		return nil
	}

	c, err := b.tracker.Complete(b.cfg.User, entry.Task.ID, civil.Date{})
	if err != nil {
		b.err = err
		return nil
	}

	b.message = fmt.Sprintf("Completed '%s' for %d points", entry.Task.Name, c.PointsEarned)
	return b.loadData
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		entry, ok := b.selected()
		b.mode = boardModeList
		if !ok {
			return nil
		}
		if err := b.tracker.DeleteTask(b.cfg.User, entry.Task.ID); err != nil {
			b.err = err
		} else {
			b.message = fmt.Sprintf("Deleted task: %s", entry.Task.Name)
		}
		return b.loadData

	case "n", "N", "esc":
		b.mode = boardModeList
	}
	return nil
}

func (b *Board) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("CYCLENCE"))
	s.WriteString("\n")

	if b.loading {
		s.WriteString("Loading...\n")
		return s.String()
	}

	if b.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", b.err)))
		s.WriteString("\n\n")
		b.err = nil
	}

	if b.message != "" {
		s.WriteString(SuccessStyle.Render(b.message))
		s.WriteString("\n\n")
	}

	if b.board == nil {
		return s.String()
	}

	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s · %d points earned",
		humanize.Date(b.board.Today), b.board.TotalPoints)))
	s.WriteString("\n")

	switch b.mode {
	case boardModeDetail:
		s.WriteString(b.detailView())
		return s.String()
	case boardModeDelete:
		if entry, ok := b.selected(); ok {
			s.WriteString(WarningStyle.Render(fmt.Sprintf(
				"Delete task '%s'? Shared tasks are only removed from your list. (y/n)",
				entry.Task.Name,
			)))
			s.WriteString("\n")
		}
		return s.String()
	}

	entries := b.entries()
	if len(entries) == 0 {
		s.WriteString(DimStyle.Render("No tasks yet. Press 'a' to add one."))
		s.WriteString("\n")
	}
	for i, e := range entries {
		cursor := "  "
		if i == b.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-28s %-8s %-14s %4d/%-4d pts",
			cursor,
			truncate(e.Task.Name, 28),
			e.Dueity,
			humanize.Relative(e.DueDate, b.board.Today),
			e.Worth,
			e.Task.Points,
		)
		style := HueStyle(e.Hue)
		if i == b.cursor {
			style = style.Bold(true)
		}
		s.WriteString(style.Render(line))
		s.WriteString("\n")
	}

	help := "[c] Complete today  [enter] Details  [a] Add  [d] Delete  [n] Notifications  [r] Refresh  [q] Quit"
	s.WriteString(HelpStyle.Render(help))
	return s.String()
}

func (b *Board) detailView() string {
	entry, ok := b.selected()
	if !ok {
		return ""
	}
	t := entry.Task
	today := b.board.Today

	var d strings.Builder
	fmt.Fprintf(&d, "%s\n\n", SelectedStyle.Render(t.Name))
	fmt.Fprintf(&d, "Recurs every: %s\n", humanize.Duration(t.Length))
	fmt.Fprintf(&d, "Due:          %s (%s)\n", humanize.Date(entry.DueDate), entry.Dueity)
	fmt.Fprintf(&d, "Worth now:    %d of %d points, decays over %s\n", entry.Worth, t.Points, humanize.Duration(t.DecayLength))
	fmt.Fprintf(&d, "Early:        %s\n", yesNo(t.AllowEarly))
	fmt.Fprintf(&d, "Last done:    %s\n", humanize.Relative(entry.LastCompleted, today))
	if len(t.Tags) > 0 {
		fmt.Fprintf(&d, "Tags:         %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Notes != "" {
		fmt.Fprintf(&d, "Notes:        %s\n", t.Notes)
	}

	d.WriteString("\nUpcoming:\n")
	for _, due := range recurrence.Upcoming(t.DueSchedule(today), b.cfg.SchedulePreview) {
		fmt.Fprintf(&d, "  %s  %s\n", humanize.Date(due), DimStyle.Render(humanize.Relative(due, today)))
	}

	var s strings.Builder
	s.WriteString(BoxStyle.Render(d.String()))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("[c] Complete today  [esc] Back"))
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "allowed"
	}
	return "not allowed"
}
