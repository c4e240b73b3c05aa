// Package tui provides the interactive terminal UI using Bubble Tea: a
// home screen with daily task groups and ranked projects, drill-down
// views for groups and projects, and the group chat.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/auth"
	"taskdeck/internal/model"
	"taskdeck/internal/rules"
	"taskdeck/internal/store"
)

// ViewMode represents the current view state.
type ViewMode int

const (
	ViewHome ViewMode = iota
	ViewGroup
	ViewProject
	ViewChat
)

// InputMode represents what kind of text input is active.
type InputMode int

const (
	InputNone      InputMode = iota
	InputNewGroup            // Entering a new daily group name
	InputNewTask             // Entering a new task name
	InputNewSub              // Entering a new subtask name
	InputAssign              // Entering a new project title
	InputAssignDue           // Entering the new project's due date
	InputChat                // Composing a chat message
)

const (
	iconOpen = "○"
	iconDone = "●"
)

// rowKind tags a home-screen row as a group card or a project card.
type rowKind int

const (
	rowGroup rowKind = iota
	rowProject
)

type homeRow struct {
	kind    rowKind
	group   *model.TaskGroup
	project *model.Project
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	store *store.Store
	auth  *auth.Service
	user  *auth.User

	groups   []model.TaskGroup
	projects []model.Project
	messages []model.Message
	greeting string

	viewMode ViewMode
	cursor   int
	rows     []homeRow // home rows rebuilt after every load

	// Drill-down state
	group   *model.TaskGroup
	project *model.Project

	// Input state
	inputMode   InputMode
	input       textinput.Model
	assignTitle string // carried between the two assign input steps

	// Watch channels, subscribed once at startup
	taskCh    <-chan []store.Doc
	projectCh <-chan []store.Doc
	messageCh <-chan []store.Doc
	sessionCh <-chan *auth.User
	cancels   []func()

	width   int
	height  int
	err     error
	message string
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	priorityColors = map[model.Priority]lipgloss.Color{
		model.PriorityHigh:   lipgloss.Color("214"),
		model.PriorityMedium: lipgloss.Color("178"),
		model.PriorityLow:    lipgloss.Color("42"),
	}

	overdueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	importantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	senderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141"))

	contentPadding = 2
)

// New creates a TUI model bound to the opened store and session.
func New(st *store.Store, authSvc *auth.Service, user *auth.User) Model {
	input := textinput.New()
	input.CharLimit = 200

	m := Model{
		store:    st,
		auth:     authSvc,
		user:     user,
		viewMode: ViewHome,
		input:    input,
	}

	var cancel func()
	m.taskCh, cancel = st.Watch(store.ColDailyTasks)
	m.cancels = append(m.cancels, cancel)
	m.projectCh, cancel = st.Watch(store.ColProjects)
	m.cancels = append(m.cancels, cancel)
	m.messageCh, cancel = st.Watch(store.ColMessages)
	m.cancels = append(m.cancels, cancel)
	m.sessionCh, cancel = authSvc.Watch()
	m.cancels = append(m.cancels, cancel)

	return m
}

// Messages
type dataMsg struct {
	groups   []model.TaskGroup
	projects []model.Project
	messages []model.Message
	greeting string
	err      error
}

type actionMsg struct {
	message string
	err     error
}

type storeChangedMsg struct {
	collection string
}

type sessionMsg struct {
	user *auth.User
}

// loadData fetches everything the views render in one pass. The home
// screen always shows fresh counts, so no per-view lazy loading.
func (m Model) loadData() tea.Cmd {
	return func() tea.Msg {
		groups, err := m.store.ListGroups()
		if err != nil {
			return dataMsg{err: err}
		}
		projects, err := m.store.ListProjects()
		if err != nil {
			return dataMsg{err: err}
		}
		messages, err := m.store.ListMessages()
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{
			groups:   groups,
			projects: projects,
			messages: messages,
			greeting: m.store.DisplayName(m.user.ID, m.user.DisplayName, m.user.Email),
		}
	}
}

// waitChange blocks on one collection's watch channel and reports the
// change. The command is re-issued after every delivery.
func waitChange(collection string, ch <-chan []store.Doc) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{collection: collection}
	}
}

func waitSession(ch <-chan *auth.User) tea.Cmd {
	return func() tea.Msg {
		user, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{user: user}
	}
}

// rebuildRows flattens groups and ranked projects into home rows.
// Ongoing projects come first in rank order, completed last.
func (m *Model) rebuildRows() {
	m.rows = nil
	for i := range m.groups {
		m.rows = append(m.rows, homeRow{kind: rowGroup, group: &m.groups[i]})
	}
	ongoing, completed := rules.Partition(m.projects)
	ranked := rules.Rank(ongoing, time.Now())
	ranked = append(ranked, rules.Rank(completed, time.Now())...)
	for i := range ranked {
		p := ranked[i]
		m.rows = append(m.rows, homeRow{kind: rowProject, project: &p})
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

// refreshSelection re-resolves the drilled-into group or project from
// freshly loaded data so watch-driven reloads update open views.
func (m *Model) refreshSelection() {
	if m.group != nil {
		found := false
		for i := range m.groups {
			if m.groups[i].ID == m.group.ID {
				m.group = &m.groups[i]
				found = true
				break
			}
		}
		if !found {
			m.group = nil
			if m.viewMode == ViewGroup {
				m.viewMode = ViewHome
			}
		}
	}
	if m.project != nil {
		found := false
		for i := range m.projects {
			if m.projects[i].ID == m.project.ID {
				m.project = &m.projects[i]
				found = true
				break
			}
		}
		if !found {
			m.project = nil
			if m.viewMode == ViewProject {
				m.viewMode = ViewHome
			}
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadData(),
		waitChange(store.ColDailyTasks, m.taskCh),
		waitChange(store.ColProjects, m.projectCh),
		waitChange(store.ColMessages, m.messageCh),
		waitSession(m.sessionCh),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""
		m.err = nil
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.groups = msg.groups
		m.projects = msg.projects
		m.messages = msg.messages
		m.greeting = msg.greeting
		m.rebuildRows()
		m.refreshSelection()
		return m, nil

	case storeChangedMsg:
		var ch <-chan []store.Doc
		switch msg.collection {
		case store.ColDailyTasks:
			ch = m.taskCh
		case store.ColProjects:
			ch = m.projectCh
		case store.ColMessages:
			ch = m.messageCh
		}
		return m, tea.Batch(m.loadData(), waitChange(msg.collection, ch))

	case sessionMsg:
		if msg.user == nil {
			// Signed out elsewhere; nothing sensible left to show.
			return m, m.quit()
		}
		m.user = msg.user
		return m, tea.Batch(m.loadData(), waitSession(m.sessionCh))

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.message = msg.message
		}
		return m, m.loadData()
	}

	if m.inputMode != InputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.inputMode != InputNone && m.viewMode != ViewChat {
		return m.handleInputKey(msg)
	}

	switch m.viewMode {
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewGroup:
		return m.handleGroupKey(msg)
	case ViewProject:
		return m.handleProjectKey(msg)
	case ViewChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = InputNone
		m.input.Reset()
		m.input.Blur()
		return m, nil
	case "enter":
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	mode := m.inputMode
	m.inputMode = InputNone
	m.input.Reset()
	m.input.Blur()

	switch mode {
	case InputNewGroup:
		if text == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			if _, err := m.store.EnsureGroup(text); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Created group %q", text)}
		}

	case InputNewTask:
		if text == "" || m.group == nil {
			return m, nil
		}
		name := m.group.Name
		return m, func() tea.Msg {
			if _, err := m.store.AddTask(name, text); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: "Task added"}
		}

	case InputNewSub:
		if text == "" || m.project == nil {
			return m, nil
		}
		id := m.project.ID
		return m, func() tea.Msg {
			p, err := m.store.AddSubtask(id, text)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Subtask added, progress %d%%", p.Progress)}
		}

	case InputAssign:
		if text == "" {
			return m, nil
		}
		m.assignTitle = text
		return m.startInput(InputAssignDue, "Due date (YYYY-MM-DD, blank = tomorrow): ")

	case InputAssignDue:
		title := m.assignTitle
		m.assignTitle = ""
		due := time.Now().Add(24 * time.Hour)
		if text != "" {
			parsed, err := time.ParseInLocation("2006-01-02", text, time.Local)
			if err != nil {
				m.err = fmt.Errorf("invalid due date %q (use YYYY-MM-DD)", text)
				return m, nil
			}
			due = parsed
		}
		return m, func() tea.Msg {
			p := &model.Project{Title: title, DueDate: due}
			sender := m.store.DisplayName(m.user.ID, m.user.DisplayName, m.user.Email)
			if _, _, err := m.store.AssignProject(p, m.user.ID, sender); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Assigned %q", title)}
		}

	case InputChat:
		if text == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			sender := m.store.DisplayName(m.user.ID, m.user.DisplayName, m.user.Email)
			if _, err := m.store.SendMessage(m.user.ID, sender, text); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: ""}
		}
	}

	return m, nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.rows)-1)

	case "enter", "l":
		if m.cursor < len(m.rows) {
			row := m.rows[m.cursor]
			if row.kind == rowGroup {
				m.group = row.group
				m.viewMode = ViewGroup
			} else {
				m.project = row.project
				m.viewMode = ViewProject
			}
			m.cursor = 0
		}

	case "n":
		return m.startInput(InputNewGroup, "New group name: ")
	case "c":
		m.viewMode = ViewChat
		return m.startInput(InputChat, "> ")
	case "r":
		return m, m.loadData()
	}
	return m, nil
}

func (m Model) handleGroupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.group == nil {
		m.viewMode = ViewHome
		return m, nil
	}
	tasks := m.group.Tasks

	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()
	case "esc", "h", "backspace":
		m.viewMode = ViewHome
		m.group = nil
		m.cursor = 0
		m.rebuildRows()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}

	case " ", "enter":
		if m.cursor < len(tasks) {
			name, id := m.group.Name, tasks[m.cursor].ID
			return m, func() tea.Msg {
				if _, err := m.store.ToggleTask(name, id); err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{message: ""}
			}
		}

	case "a":
		return m.startInput(InputNewTask, "New task: ")

	case "x":
		if m.cursor < len(tasks) {
			name, id := m.group.Name, tasks[m.cursor].ID
			return m, func() tea.Msg {
				if _, err := m.store.RemoveTask(name, id); err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{message: "Task removed"}
			}
		}

	case "D":
		name := m.group.Name
		m.viewMode = ViewHome
		m.group = nil
		m.cursor = 0
		return m, func() tea.Msg {
			if err := m.store.DeleteGroup(name); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{message: fmt.Sprintf("Deleted group %q", name)}
		}
	}
	return m, nil
}

func (m Model) handleProjectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.project == nil {
		m.viewMode = ViewHome
		return m, nil
	}
	subtasks := rules.SortSubtasksForDisplay(m.project.Subtasks)

	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()
	case "esc", "h", "backspace":
		m.viewMode = ViewHome
		m.project = nil
		m.cursor = 0
		m.rebuildRows()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(subtasks)-1 {
			m.cursor++
		}

	case " ", "enter":
		if m.cursor < len(subtasks) {
			id, subID := m.project.ID, subtasks[m.cursor].ID
			return m, func() tea.Msg {
				if _, err := m.store.ToggleSubtask(id, subID); err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{message: ""}
			}
		}

	case "a":
		return m.startInput(InputNewSub, "New subtask: ")
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "esc":
		m.viewMode = ViewHome
		m.inputMode = InputNone
		m.input.Reset()
		m.input.Blur()
		m.cursor = 0
		return m, nil
	case "ctrl+a":
		return m.startInput(InputAssign, "Project title: ")
	case "enter":
		return m.submitInput()
	}
	// The chat composer stays focused while the view is open.
	if m.inputMode == InputNone {
		next, cmd := m.startInput(InputChat, "> ")
		var inputCmd tea.Cmd
		next.input, inputCmd = next.input.Update(msg)
		return next, tea.Batch(cmd, inputCmd)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startInput(mode InputMode, prompt string) (Model, tea.Cmd) {
	m.inputMode = mode
	m.input.Prompt = prompt
	m.input.Reset()
	return m, m.input.Focus()
}

// quit tears down the watch subscriptions before exiting.
func (m Model) quit() tea.Cmd {
	for _, cancel := range m.cancels {
		cancel()
	}
	return tea.Quit
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	switch m.viewMode {
	case ViewHome:
		b.WriteString(m.homeView())
	case ViewGroup:
		b.WriteString(m.groupView())
	case ViewProject:
		b.WriteString(m.projectView())
	case ViewChat:
		b.WriteString(m.chatView())
	}

	if m.inputMode != InputNone && m.viewMode != ViewChat {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(messageStyle.Render(m.message))
	}

	padStyle := lipgloss.NewStyle().
		PaddingLeft(contentPadding).
		PaddingRight(contentPadding).
		PaddingTop(1)
	return padStyle.Render(b.String())
}

func (m Model) homeView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Hello, " + m.greeting + " 👋"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("Nothing here yet. Press n to create a daily group."))
		b.WriteString("\n")
	}

	now := time.Now()
	lastKind := rowKind(-1)
	seenCompleted := false
	for i, row := range m.rows {
		if row.kind != lastKind {
			if row.kind == rowGroup {
				b.WriteString(sectionStyle.Render("Daily Tasks"))
			} else {
				b.WriteString(sectionStyle.Render("Ongoing Projects"))
			}
			b.WriteString("\n")
			lastKind = row.kind
		}
		if row.kind == rowProject && !seenCompleted && rules.ProjectProgress(row.project.Subtasks) == 100 {
			seenCompleted = true
			b.WriteString(sectionStyle.Render("Completed Projects"))
			b.WriteString("\n")
		}

		var line string
		if row.kind == rowGroup {
			g := row.group
			line = fmt.Sprintf("  %-24s %d/%d done", g.Name, g.CompletedCount(), len(g.Tasks))
		} else {
			line = "  " + m.projectLine(row.project, now)
		}
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:nav  enter:open  n:new group  c:chat  r:refresh  q:quit"))
	return b.String()
}

// projectLine renders one project card row: priority tag, importance
// star, title, progress, due date.
func (m Model) projectLine(p *model.Project, now time.Time) string {
	tag := m.priorityTag(p, now)
	star := " "
	if p.IsImportant {
		star = importantStyle.Render("★")
	}
	return fmt.Sprintf("%s %s %-24s %3d%%  due %s",
		tag, star, p.Title, rules.ProjectProgress(p.Subtasks), p.DueDate.Format("Jan 2"))
}

// priorityTag renders the display label. Overdue overrides the computed
// priority for display only; ranking still uses the computed one.
func (m Model) priorityTag(p *model.Project, now time.Time) string {
	if rules.IsOverdue(p.DueDate, now) {
		return overdueStyle.Render("[Overdue]")
	}
	prio := rules.Classify(p.DueDate, p.IsImportant, now)
	return lipgloss.NewStyle().
		Foreground(priorityColors[prio]).
		Render(fmt.Sprintf("[%-7s]", prio))
}

func (m Model) groupView() string {
	var b strings.Builder
	g := m.group

	b.WriteString(titleStyle.Render(g.Name))
	b.WriteString(fmt.Sprintf("  %d/%d done\n\n", g.CompletedCount(), len(g.Tasks)))

	if len(g.Tasks) == 0 {
		b.WriteString(dimStyle.Render("No tasks yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, t := range g.Tasks {
		icon := iconOpen
		if t.Completed {
			icon = iconDone
		}
		line := fmt.Sprintf("%s %s", icon, t.Name)
		if t.Completed {
			line = dimStyle.Render(line)
		}
		if i == m.cursor {
			line = selectedRowStyle.Render(fmt.Sprintf("%s %s", icon, t.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:toggle  a:add  x:remove  D:delete group  esc:back  q:quit"))
	return b.String()
}

func (m Model) projectView() string {
	var b strings.Builder
	p := m.project
	now := time.Now()

	star := ""
	if p.IsImportant {
		star = " " + importantStyle.Render("★")
	}
	b.WriteString(titleStyle.Render(p.Title) + star)
	b.WriteString("  " + m.priorityTag(p, now))
	b.WriteString("\n")
	if p.Details != "" {
		b.WriteString(p.Details)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	progress := rules.ProjectProgress(p.Subtasks)
	b.WriteString(fmt.Sprintf("Completion: %d%%  %s\n", progress, progressBar(progress, 24)))
	creatorName, creatorEmail := "", ""
	if p.CreatedBy == m.user.ID {
		creatorName, creatorEmail = m.user.DisplayName, m.user.Email
	}
	b.WriteString(dimStyle.Render("Assigned by: " + m.store.DisplayName(p.CreatedBy, creatorName, creatorEmail)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Due Date: " + p.DueDate.Format("Jan 2, 2006")))
	b.WriteString("\n\n")

	subtasks := rules.SortSubtasksForDisplay(p.Subtasks)
	if len(subtasks) == 0 {
		b.WriteString(dimStyle.Render("No subtasks yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, st := range subtasks {
		icon := iconOpen
		if st.Completed {
			icon = iconDone
		}
		line := fmt.Sprintf("%s %s", icon, st.Name)
		if st.Completed {
			line = dimStyle.Render(line)
		}
		if i == m.cursor {
			line = selectedRowStyle.Render(fmt.Sprintf("%s %s", icon, st.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:toggle  a:add subtask  esc:back  q:quit"))
	return b.String()
}

func (m Model) chatView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Group Chat"))
	b.WriteString("\n\n")

	// Show the tail of the history that fits the viewport.
	visible := m.messages
	maxLines := m.height - 8
	if maxLines > 0 && len(visible) > maxLines {
		visible = visible[len(visible)-maxLines:]
	}
	for _, msg := range visible {
		ts := dimStyle.Render(msg.Timestamp.Local().Format("15:04"))
		sender := senderStyle.Render(msg.SenderName)
		line := fmt.Sprintf("%s %s: %s", ts, sender, msg.Text)
		if msg.ProjectID != "" {
			line += dimStyle.Render("  (project " + msg.ProjectID + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter:send  ctrl+a:assign project  esc:back"))
	return b.String()
}

// progressBar renders a fixed-width completion bar.
func progressBar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// Run starts the TUI for the signed-in user.
func Run(st *store.Store, authSvc *auth.Service, user *auth.User) error {
	m := New(st, authSvc, user)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
