package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tracka/internal/db"
	"tracka/internal/models"
	"tracka/internal/ui/keys"
	"tracka/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusTaskList
)

// TaskListView shows tasks for a project
type TaskListView struct {
	db      *db.DB
	project models.Project
	tasks   []models.Task
	stats   models.TreeStats
	blocks  map[int64][]int64 // task -> incomplete blockers
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model
	hideDone    bool

	// Task creation/editing
	editing       bool
	editingID     int64 // 0 when creating
	editTitle     textinput.Model
	editNotes     textarea.Model
	editDue       textinput.Model
	editPriority  textinput.Model
	editFocusIdx  int // 0=title, 1=notes, 2=due, 3=priority, 4=blockers, 5=save
	editDeps      []int64
	editDepCursor int

	// Task detail view (read-only)
	viewingTask   bool
	viewTaskLinks []models.Link

	// Project overview (milestones, links, papers, experiments, note)
	viewingOverview bool
	overview        overviewLoadedMsg

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(database *db.DB, project models.Project) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editNotes := textarea.New()
	editNotes.Placeholder = "Notes"
	editNotes.CharLimit = 5000
	editNotes.SetWidth(50)
	editNotes.SetHeight(4)
	editNotes.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	editPriority := textinput.New()
	editPriority.Placeholder = "0-5"
	editPriority.CharLimit = 1

	return &TaskListView{
		db:           database,
		project:      project,
		blocks:       map[int64][]int64{},
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		focus:        FocusTaskList,
		searchInput:  search,
		editTitle:    editTitle,
		editNotes:    editNotes,
		editDue:      editDue,
		editPriority: editPriority,
	}
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

type tasksLoadedMsg struct {
	tasks  []models.Task
	stats  models.TreeStats
	blocks map[int64][]int64
}

type linksLoadedMsg struct {
	links []models.Link
}

type overviewLoadedMsg struct {
	milestones  []models.Milestone
	links       []models.Link
	papers      []models.Paper
	experiments []models.Experiment
	note        *models.Note
}

func (v *TaskListView) loadTasks() tea.Msg {
	filter := db.TaskFilter{Search: strings.TrimSpace(v.searchInput.Value())}
	if v.hideDone {
		filter.Status = models.TaskOpen
	}
	tasks, err := v.db.ListTasks(v.project.ID, filter)
	if err != nil {
		return err
	}

	stats, err := v.db.SubtreeStats(v.project.ID, time.Now())
	if err != nil {
		return err
	}

	done := map[int64]bool{}
	all, err := v.db.ListTasks(v.project.ID, db.TaskFilter{})
	if err != nil {
		return err
	}
	for _, t := range all {
		done[t.ID] = t.Status == models.TaskDone
	}

	blocks := map[int64][]int64{}
	for _, t := range tasks {
		deps, err := v.db.Dependencies(t.ID)
		if err != nil {
			return err
		}
		var open []int64
		for _, id := range deps {
			if !done[id] {
				open = append(open, id)
			}
		}
		if len(open) > 0 {
			blocks[t.ID] = open
		}
	}

	return tasksLoadedMsg{tasks: tasks, stats: *stats, blocks: blocks}
}

func (v *TaskListView) loadOverview() tea.Msg {
	var msg overviewLoadedMsg
	var err error

	if msg.milestones, err = v.db.ListMilestones(v.project.ID); err != nil {
		return err
	}
	if msg.links, err = v.db.ListProjectLinks(v.project.ID, ""); err != nil {
		return err
	}
	if msg.papers, err = v.db.ListPapers(v.project.ID); err != nil {
		return err
	}
	if msg.experiments, err = v.db.ListExperiments(v.project.ID); err != nil {
		return err
	}
	// A project without a note is the normal case, not an error
	if note, err := v.db.GetProjectNote(v.project.ID); err == nil {
		msg.note = note
	}
	return msg
}

func (v *TaskListView) loadTaskLinks() tea.Msg {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return nil
	}
	links, err := v.db.ListTaskLinks(v.tasks[v.cursor].ID)
	if err != nil {
		return nil
	}
	return linksLoadedMsg{links: links}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editNotes.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.stats = msg.stats
		v.blocks = msg.blocks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case linksLoadedMsg:
		v.viewTaskLinks = msg.links
		return v, nil

	case overviewLoadedMsg:
		v.overview = msg
		v.viewingOverview = true
		return v, nil

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.viewingOverview {
			if key.Matches(msg, v.keys.Back) || msg.String() == "o" {
				v.viewingOverview = false
				return v, nil
			}
			if key.Matches(msg, v.keys.Quit) {
				return v, tea.Quit
			}
			return v, nil
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing in search
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.loadTasks
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			return v, tea.Batch(cmd, v.loadTasks)
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.MoveUp):
		return v, v.reorder(-1)

	case key.Matches(msg, v.keys.MoveDown):
		return v, v.reorder(1)

	case key.Matches(msg, v.keys.Toggle):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			task := v.tasks[v.cursor]
			next := models.TaskDone
			if task.Status == models.TaskDone {
				next = models.TaskOpen
			}
			if err := v.db.UpdateTask(task.ID, models.TaskPatch{Status: models.Some(next)}); err != nil {
				return v, nil
			}
			return v, v.loadTasks
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, func() tea.Msg { return BackToProjects{} }
		case FocusTaskList:
			if len(v.tasks) > 0 {
				v.viewingTask = true
				v.viewTaskLinks = nil
				return v, v.loadTaskLinks
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			return v, v.startEditTask(v.tasks[v.cursor])
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = v.tasks[v.cursor].ID
			v.deleteTargetName = v.tasks[v.cursor].Title
			return v, nil
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case msg.String() == "c":
		v.hideDone = !v.hideDone
		v.cursor = 0
		v.scrollY = 0
		return v, v.loadTasks

	case msg.String() == "o":
		return v, v.loadOverview

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// reorder swaps the selected task with its list neighbor. Tasks in the
// list all belong to the same project, so any neighbor is a valid swap.
func (v *TaskListView) reorder(dir int) tea.Cmd {
	if v.focus != FocusTaskList {
		return nil
	}
	other := v.cursor + dir
	if other < 0 || other >= len(v.tasks) {
		return nil
	}
	if err := v.db.ReorderTasks(v.tasks[v.cursor].ID, v.tasks[other].ID); err != nil {
		return nil
	}
	v.cursor = other
	v.ensureVisible()
	return v.loadTasks
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewingTask = false
		if err := v.db.DeleteTask(v.deleteTargetID); err == nil {
			return v, v.loadTasks
		}
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		v.viewTaskLinks = nil
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.viewTaskLinks = nil
		return v, v.startEditTask(v.tasks[v.cursor])
	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTargetID = v.tasks[v.cursor].ID
		v.deleteTargetName = v.tasks[v.cursor].Title
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 6
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 5) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on single-line inputs moves on; on the notes textarea it
		// inserts a newline and falls through below.
		if v.editFocusIdx == 0 || v.editFocusIdx == 2 || v.editFocusIdx == 3 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			v.toggleEditDep()
			return v, nil
		}
		if v.editFocusIdx == 5 {
			return v, v.saveTask()
		}

	case msg.String() == " ":
		if v.editFocusIdx == 4 {
			v.toggleEditDep()
			return v, nil
		}

	case key.Matches(msg, v.keys.Up):
		if v.editFocusIdx == 4 && v.editDepCursor > 0 {
			v.editDepCursor--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.editFocusIdx == 4 && v.editDepCursor < len(v.depCandidates())-1 {
			v.editDepCursor++
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editNotes, cmd = v.editNotes.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	case 3:
		v.editPriority, cmd = v.editPriority.Update(msg)
	}
	return v, cmd
}

// depCandidates returns the tasks selectable as blockers: every task in
// the project except the one being edited.
func (v *TaskListView) depCandidates() []models.Task {
	var out []models.Task
	for _, t := range v.tasks {
		if t.ID != v.editingID {
			out = append(out, t)
		}
	}
	return out
}

func (v *TaskListView) toggleEditDep() {
	candidates := v.depCandidates()
	if v.editDepCursor >= len(candidates) {
		return
	}
	id := candidates[v.editDepCursor].ID
	for i, existing := range v.editDeps {
		if existing == id {
			v.editDeps = append(v.editDeps[:i], v.editDeps[i+1:]...)
			return
		}
	}
	v.editDeps = append(v.editDeps, id)
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + 3) % 3)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 1 line + 1 margin = 2 lines
	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingID = 0
	v.editFocusIdx = 0
	v.editDepCursor = 0
	v.editDeps = nil
	v.editTitle.Reset()
	v.editNotes.Reset()
	v.editDue.Reset()
	v.editPriority.SetValue(strconv.Itoa(models.DefaultPriority))
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) tea.Cmd {
	v.editing = true
	v.editingID = task.ID
	v.editFocusIdx = 0
	v.editDepCursor = 0
	deps, err := v.db.Dependencies(task.ID)
	if err == nil {
		v.editDeps = deps
	} else {
		v.editDeps = nil
	}
	v.editTitle.SetValue(task.Title)
	v.editNotes.SetValue(task.Notes)
	if task.DueDate != nil {
		v.editDue.SetValue(*task.DueDate)
	} else {
		v.editDue.Reset()
	}
	v.editPriority.SetValue(strconv.Itoa(task.Priority))
	v.updateEditFocus()
	return textinput.Blink
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editNotes.Blur()
	v.editDue.Blur()
	v.editPriority.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editNotes.Focus()
	case 2:
		v.editDue.Focus()
	case 3:
		v.editPriority.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		return nil
	}

	notes := strings.TrimSpace(v.editNotes.Value())
	due := strings.TrimSpace(v.editDue.Value())
	priority, _ := strconv.Atoi(v.editPriority.Value())
	priority = clamp(priority, 0, 5)

	taskID := v.editingID

	if taskID == 0 {
		create := models.NewTask{
			ProjectID: v.project.ID,
			Title:     title,
			Notes:     notes,
			Priority:  &priority,
		}
		if due != "" {
			create.DueDate = &due
		}
		task, err := v.db.CreateTask(create)
		if err != nil {
			return nil
		}
		taskID = task.ID
	} else {
		patch := models.TaskPatch{
			Title:    models.Some(title),
			Notes:    models.Some(notes),
			Priority: models.Some(priority),
		}
		if due != "" {
			patch.DueDate = models.Some(due)
		} else {
			patch.DueDate = models.Null[string]()
		}
		if err := v.db.UpdateTask(taskID, patch); err != nil {
			return nil
		}
	}

	if err := v.db.SetDependencies(taskID, v.editDeps); err != nil {
		return nil
	}

	v.editing = false
	return v.loadTasks
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	if v.viewingOverview {
		return v.renderOverview()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	swatch := lipgloss.NewStyle().
		Foreground(lipgloss.Color(v.project.Color)).
		Render("█ ")
	titleText := v.project.Name
	if v.hideDone {
		titleText += " (open only)"
	}
	title := swatch + s.Title.Render(titleText)

	statsLine := s.StatusBar.Render(fmt.Sprintf("%d/%d done", v.stats.Done, v.stats.Total))
	if v.stats.Overdue > 0 {
		statsLine += s.Overdue.Render(fmt.Sprintf("  %d overdue", v.stats.Overdue))
	}
	if v.stats.DueSoon > 0 {
		statsLine += s.DueSoon.Render(fmt.Sprintf("  %d due soon", v.stats.DueSoon))
	}

	var header string
	if isNarrow {
		header = searchBox
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		backBtn := backStyle.Render("← Projects")

		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backBtn, "  ", searchBox,
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, statsLine, header)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	availableHeight := v.height - 12
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
	if visibleItems < 1 {
		visibleItems = 1
	}

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		task := v.tasks[i]
		items = append(items, v.renderTaskItem(task, i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	checkbox := "[ ]"
	if task.Status == models.TaskDone {
		checkbox = s.Done.Render("[x]")
	}

	line := checkbox + " " + task.Title

	if badge := v.dueBadge(task); badge != "" {
		line += "  " + badge
	}

	if open := v.blocks[task.ID]; len(open) > 0 {
		line += "  " + s.Blocked.Render(fmt.Sprintf("⊘ blocked by %d", len(open)))
	}

	itemStyle := s.ListItem.Width(width)
	if selected {
		itemStyle = s.ListSelected.Width(width)
	}

	return itemStyle.Render(line) + "\n"
}

func (v *TaskListView) dueBadge(task models.Task) string {
	s := v.styles
	if task.DueDate == nil || task.Status == models.TaskDone {
		return ""
	}
	today := time.Now().Format("2006-01-02")
	soon := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	switch {
	case *task.DueDate < today:
		return s.Overdue.Render("overdue " + *task.DueDate)
	case *task.DueDate <= soon:
		return s.DueSoon.Render("due " + *task.DueDate)
	default:
		return s.TitleMuted.Render("due " + *task.DueDate)
	}
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if v.editingID != 0 {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	notesStyle := s.Input
	dueStyle := s.Input
	priorityStyle := s.Input
	depsStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		notesStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		priorityStyle = s.InputFocused
	case 4:
		depsStyle = s.InputFocused
	case 5:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	depSelector := v.renderDepSelector(depsStyle, inputWidth)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Notes:",
		notesStyle.Render(v.editNotes.View()),
		"",
		"Due (YYYY-MM-DD):",
		dueStyle.Width(14).Render(v.editDue.View()),
		"",
		"Priority (0-5):",
		priorityStyle.Width(8).Render(v.editPriority.View()),
		"",
		"Blocked by:",
		depSelector,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ↑↓: select blocker • Space/↵: toggle • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

// renderDepSelector renders the inline blocked-by selector for the edit form
func (v *TaskListView) renderDepSelector(containerStyle lipgloss.Style, width int) string {
	s := v.styles

	candidates := v.depCandidates()
	if len(candidates) == 0 {
		return containerStyle.Width(width).Render(s.TitleMuted.Render("No other tasks"))
	}

	var items []string
	for i, task := range candidates {
		isSelected := false
		for _, id := range v.editDeps {
			if id == task.ID {
				isSelected = true
				break
			}
		}

		checkbox := "[ ]"
		if isSelected {
			checkbox = "[x]"
		}

		itemText := checkbox + " " + task.Title
		if v.editFocusIdx == 4 && i == v.editDepCursor {
			items = append(items, s.ListSelected.Render(itemText))
		} else {
			items = append(items, s.ListItem.Render(itemText))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return containerStyle.Width(width).Render(content)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	doneLabel := "hide done"
	if v.hideDone {
		doneLabel = "show done"
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s toggle • %s new • %s edit • %s del • %s move • %s search • %s %s • %s back",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("spc"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("J/K"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("c"),
			doneLabel,
			v.styles.HelpKey.Render("esc"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	doneLabel := "hide completed"
	if v.hideDone {
		doneLabel = "show completed"
	}

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("space") + "  toggle done",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("J/K") + "    move task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("o") + "      project overview",
		s.HelpKey.Render("c") + "      " + doneLabel,
		s.HelpKey.Render("esc") + "    back",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed along with its links and dependencies.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderOverview() string {
	s := v.styles
	o := v.overview
	maxContentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(maxContentWidth-10, 20, 70)

	labelStyle := s.TitleMuted
	none := s.TitleMuted.Render("None")

	var milestoneLines []string
	for _, m := range o.milestones {
		mark := "[ ]"
		switch m.Status {
		case models.MilestoneDone:
			mark = s.Done.Render("[x]")
		case models.MilestoneBlocked:
			mark = s.Blocked.Render("[⊘]")
		}
		line := mark + " " + m.Title
		if m.DueDate != nil {
			line += "  " + s.TitleMuted.Render(*m.DueDate)
		}
		milestoneLines = append(milestoneLines, line)
	}
	milestones := none
	if len(milestoneLines) > 0 {
		milestones = lipgloss.JoinVertical(lipgloss.Left, milestoneLines...)
	}

	var linkLines []string
	for _, l := range o.links {
		label := l.Label
		if label == "" {
			label = l.Target
		}
		linkLines = append(linkLines, s.TitleMuted.Render("["+l.Kind+"] ")+label)
	}
	links := none
	if len(linkLines) > 0 {
		links = lipgloss.JoinVertical(lipgloss.Left, linkLines...)
	}

	var paperLines []string
	for _, p := range o.papers {
		line := s.TitleMuted.Render("("+p.Status+") ") + p.Title
		if p.Authors != "" {
			line += s.TitleMuted.Render(" · " + p.Authors)
		}
		paperLines = append(paperLines, line)
	}
	papers := none
	if len(paperLines) > 0 {
		papers = lipgloss.JoinVertical(lipgloss.Left, paperLines...)
	}

	var expLines []string
	for _, e := range o.experiments {
		expLines = append(expLines, s.TitleMuted.Render("("+e.Status+") ")+e.Name)
	}
	experiments := none
	if len(expLines) > 0 {
		experiments = lipgloss.JoinVertical(lipgloss.Left, expLines...)
	}

	note := s.TitleMuted.Render("No note")
	if o.note != nil {
		note = lipgloss.NewStyle().Width(textWidth).Render(o.note.Content)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(v.project.Name+" · Overview"),
		"",
		labelStyle.Render("Milestones"),
		milestones,
		"",
		labelStyle.Render("Links"),
		links,
		"",
		labelStyle.Render("Papers"),
		papers,
		"",
		labelStyle.Render("Experiments"),
		experiments,
		"",
		labelStyle.Render("Note"),
		note,
		"",
		s.Help.Render(s.HelpKey.Render("esc")+" back"),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return ""
	}

	s := v.styles
	task := v.tasks[v.cursor]
	maxContentWidth := styles.ContentWidth(v.width)

	statusText := task.Status
	if task.CompletedAt != nil {
		statusText += " on " + task.CompletedAt.Format("Jan 2, 2006")
	}

	dueText := "None"
	if task.DueDate != nil {
		dueText = *task.DueDate
	}

	notesText := task.Notes
	if notesText == "" {
		notesText = s.TitleMuted.Render("No notes")
	}

	var blockedText string
	if open := v.blocks[task.ID]; len(open) > 0 {
		titles := map[int64]string{}
		for _, t := range v.tasks {
			titles[t.ID] = t.Title
		}
		var names []string
		for _, id := range open {
			if name, ok := titles[id]; ok {
				names = append(names, name)
			} else {
				names = append(names, fmt.Sprintf("#%d", id))
			}
		}
		blockedText = s.Blocked.Render("⊘ " + strings.Join(names, ", "))
	} else {
		blockedText = s.TitleMuted.Render("Not blocked")
	}

	var linksContent string
	if len(v.viewTaskLinks) == 0 {
		linksContent = s.TitleMuted.Render("No links")
	} else {
		var lines []string
		for _, link := range v.viewTaskLinks {
			label := link.Label
			if label == "" {
				label = link.Target
			}
			lines = append(lines, fmt.Sprintf("%s %s", s.TitleMuted.Render("["+link.Kind+"]"), label))
		}
		linksContent = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	titleStyle := s.Title.MarginBottom(1)
	labelStyle := s.TitleMuted
	textWidth := clamp(maxContentWidth-10, 20, 70)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(task.Title),
		"",
		labelStyle.Render("Status"),
		statusText,
		"",
		labelStyle.Render("Priority"),
		strconv.Itoa(task.Priority),
		"",
		labelStyle.Render("Due"),
		dueText,
		"",
		labelStyle.Render("Blocked by"),
		blockedText,
		"",
		labelStyle.Render("Links"),
		linksContent,
		"",
		labelStyle.Render("Notes"),
		lipgloss.NewStyle().Width(textWidth).Render(notesText),
		"",
		s.Help.Render(
			fmt.Sprintf("%s edit • %s delete • %s back",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("esc"),
			),
		),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}
