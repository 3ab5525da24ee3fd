package screens

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/cyclence/internal/config"
	"github.com/emilianohg/cyclence/internal/recurrence"
	"github.com/emilianohg/cyclence/internal/tracker"
)

const (
	fieldName = iota
	fieldEvery
	fieldFirstDue
	fieldPoints
	fieldDecay
	fieldAllowEarly
	fieldTags
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name",
	"Every (days)",
	"First due (YYYY-MM-DD, blank for tomorrow)",
	"Points",
	"Decay (days, blank for same as every)",
	"Allow early (y/n)",
	"Tags (comma separated)",
}

type AddTask struct {
	tracker *tracker.Tracker
	cfg     *config.Config
	width   int
	height  int

	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func NewAddTask(t *tracker.Tracker, cfg *config.Config) *AddTask {
	a := &AddTask{tracker: t, cfg: cfg}
	for i := range a.inputs {
		ti := textinput.New()
		ti.CharLimit = 100
		ti.Width = 40
		a.inputs[i] = ti
	}
	a.inputs[fieldName].Placeholder = "Water the plants"
	a.inputs[fieldEvery].Placeholder = "7"
	return a
}

func (a *AddTask) SetSize(width, height int) {
	a.width = width
	a.height = height
}

func (a *AddTask) Init() tea.Cmd {
	a.err = nil
	a.focus = fieldName
	for i := range a.inputs {
		a.inputs[i].SetValue("")
		a.inputs[i].Blur()
	}
	a.inputs[fieldPoints].SetValue(strconv.Itoa(a.cfg.DefaultPoints))
	a.inputs[fieldAllowEarly].SetValue(boolValue(a.cfg.DefaultAllowEarly))
	return a.inputs[fieldName].Focus()
}

func (a *AddTask) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return Navigate("board")
		case "tab", "down":
			return a.moveFocus(1)
		case "shift+tab", "up":
			return a.moveFocus(-1)
		case "enter":
			if a.focus < fieldCount-1 {
				return a.moveFocus(1)
			}
			return a.save()
		case "ctrl+s":
			return a.save()
		}
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return cmd
}

func (a *AddTask) moveFocus(delta int) tea.Cmd {
	a.inputs[a.focus].Blur()
	a.focus = (a.focus + delta + fieldCount) % fieldCount
	return a.inputs[a.focus].Focus()
}

func (a *AddTask) save() tea.Cmd {
	var values [fieldCount]string
	for i := range a.inputs {
		values[i] = a.inputs[i].Value()
	}

	opts, err := ParseTaskForm(values)
	if err != nil {
		a.err = err
		return nil
	}

	if _, err := a.tracker.CreateTask(a.cfg.User, opts); err != nil {
		a.err = err
		return nil
	}
	return Navigate("board")
}

// ParseTaskForm turns the add-task form values into task options.
func ParseTaskForm(values [fieldCount]string) (recurrence.Options, error) {
	var opts recurrence.Options
	var err error

	opts.Name = strings.TrimSpace(values[fieldName])
	if opts.Name == "" {
		return opts, fmt.Errorf("name is required")
	}

	if opts.Length, err = strconv.Atoi(strings.TrimSpace(values[fieldEvery])); err != nil {
		return opts, fmt.Errorf("every must be a number of days")
	}

	if v := strings.TrimSpace(values[fieldFirstDue]); v != "" {
		if opts.FirstDue, err = civil.ParseDate(v); err != nil {
			return opts, fmt.Errorf("first due must look like 2006-01-02")
		}
	}

	if opts.Points, err = strconv.Atoi(strings.TrimSpace(values[fieldPoints])); err != nil {
		return opts, fmt.Errorf("points must be a number")
	}

	if v := strings.TrimSpace(values[fieldDecay]); v != "" {
		if opts.DecayLength, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("decay must be a number of days")
		}
	}

	switch strings.ToLower(strings.TrimSpace(values[fieldAllowEarly])) {
	case "y", "yes", "true", "on":
		opts.AllowEarly = true
	case "", "n", "no", "false", "off":
	default:
		return opts, fmt.Errorf("allow early must be y or n")
	}

	if v := strings.TrimSpace(values[fieldTags]); v != "" {
		opts.Tags = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}

	return opts, nil
}

func (a *AddTask) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("NEW TASK"))
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n\n")
	}

	for i := range a.inputs {
		label := NormalStyle.Render(fieldLabels[i])
		if i == a.focus {
			label = SelectedStyle.Render(fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(a.inputs[i].View())
		b.WriteString("\n\n")
	}

	b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Next/Save  [ctrl+s] Save  [esc] Cancel"))
	return b.String()
}

func boolValue(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
