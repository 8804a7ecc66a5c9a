package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tracka/internal/db"
	"tracka/internal/models"
	"tracka/internal/ui/keys"
	"tracka/internal/ui/styles"
)

// projectEntry is a project flattened out of the tree, carrying its
// nesting depth and the base color its tint shade derives from.
type projectEntry struct {
	project   models.Project
	depth     int
	baseColor string
	stats     models.TreeStats
}

func (e projectEntry) swatch() lipgloss.Color {
	if e.project.ParentID != nil && e.project.Tint != nil {
		return styles.TintShade(e.baseColor, *e.project.Tint)
	}
	return lipgloss.Color(e.project.Color)
}

type projectItem struct {
	entry projectEntry
}

func (i projectItem) Title() string       { return i.entry.project.Name }
func (i projectItem) Description() string { return i.entry.project.Description }
func (i projectItem) FilterValue() string { return i.entry.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	indent := strings.Repeat("  ", p.entry.depth)
	swatch := lipgloss.NewStyle().Foreground(p.entry.swatch()).Render("█")

	name := p.entry.project.Name
	if p.entry.project.Archived {
		name += " (archived)"
	}

	title := titleStyle.Render(indent + swatch + " " + name)
	desc := descStyle.Render(indent + "  " + d.summary(p.entry))

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func (d projectDelegate) summary(e projectEntry) string {
	if e.stats.Total == 0 {
		if e.project.Description != "" {
			return e.project.Description
		}
		return "no tasks"
	}
	s := fmt.Sprintf("%d/%d done", e.stats.Done, e.stats.Total)
	if e.stats.Overdue > 0 {
		s += fmt.Sprintf(" · %d overdue", e.stats.Overdue)
	}
	if e.stats.DueSoon > 0 {
		s += fmt.Sprintf(" · %d due soon", e.stats.DueSoon)
	}
	return s
}

type ProjectListView struct {
	db       *db.DB
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	showArchived bool

	creating         bool
	editingID        int64 // 0 when creating
	formParentID     *int64
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string
	newName          textinput.Model
	newDesc          textinput.Model
	newColor         textinput.Model
	focusIdx         int // 0=name, 1=desc, 2=color, 3=confirm

	showHelpPopup bool
}

func NewProjectListView(database *db.DB) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	newColor := textinput.New()
	newColor.Placeholder = db.DefaultProjectColor
	newColor.CharLimit = 7

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		db:       database,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
		newColor: newColor,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

type projectsLoadedMsg struct {
	entries []projectEntry
}

// SelectedProject signals that a project was opened
type SelectedProject struct {
	Project models.Project
}

func (v *ProjectListView) loadProjects() tea.Msg {
	roots, err := v.db.ListProjects(db.ProjectFilter{
		RootsOnly:       true,
		IncludeArchived: v.showArchived,
	})
	if err != nil {
		return err
	}

	now := time.Now()
	var entries []projectEntry
	var walk func(p models.Project, depth int, base string) error
	walk = func(p models.Project, depth int, base string) error {
		stats, err := v.db.SubtreeStats(p.ID, now)
		if err != nil {
			return err
		}
		entries = append(entries, projectEntry{project: p, depth: depth, baseColor: base, stats: *stats})

		children, err := v.db.ListSubprojects(p.ID)
		if err != nil {
			return err
		}
		for _, c := range children {
			if c.Archived && !v.showArchived {
				continue
			}
			if err := walk(c, depth+1, p.Color); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r, 0, r.Color); err != nil {
			return err
		}
	}
	return projectsLoadedMsg{entries: entries}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = projectItem{entry: e}
		}
		v.list.SetItems(items)
		v.loaded = true
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

		if v.creating {
			return v.updateForm(msg)
		}

		// Let the list's own filter input consume keys while active
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// q quits, esc does nothing at the top level
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.openForm(0, nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Sub):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				parentID := item.entry.project.ID
				v.openForm(0, &parentID)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.openForm(item.entry.project.ID, item.entry.project.ParentID)
				v.newName.SetValue(item.entry.project.Name)
				v.newDesc.SetValue(item.entry.project.Description)
				v.newColor.SetValue(item.entry.project.Color)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Archive):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.db.UpdateProject(item.entry.project.ID, models.ProjectPatch{
					Archived: models.Some(!item.entry.project.Archived),
				})
				return v, v.loadProjects
			}
		case msg.String() == "A":
			v.showArchived = !v.showArchived
			return v, v.loadProjects
		case key.Matches(msg, v.keys.MoveUp):
			return v, v.reorder(-1)
		case key.Matches(msg, v.keys.MoveDown):
			return v, v.reorder(1)
		case msg.String() == "?":
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.entry.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.entry.project.ID
				v.deleteTargetName = item.entry.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// reorder swaps the selected project with its nearest sibling in the
// given direction. Entries from other parents sit between siblings in
// the flattened list, so scan past them.
func (v *ProjectListView) reorder(dir int) tea.Cmd {
	items := v.list.Items()
	idx := v.list.Index()
	if idx < 0 || idx >= len(items) {
		return nil
	}
	cur, ok := items[idx].(projectItem)
	if !ok {
		return nil
	}

	for i := idx + dir; i >= 0 && i < len(items); i += dir {
		other, ok := items[i].(projectItem)
		if !ok {
			continue
		}
		if sameParent(cur.entry.project.ParentID, other.entry.project.ParentID) {
			if err := v.db.ReorderProjects(cur.entry.project.ID, other.entry.project.ID); err != nil {
				return nil
			}
			v.list.Select(i)
			return v.loadProjects
		}
		if other.entry.depth < cur.entry.depth {
			break // left the sibling group
		}
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (v *ProjectListView) openForm(editID int64, parentID *int64) {
	v.creating = true
	v.editingID = editID
	v.formParentID = parentID
	v.focusIdx = 0
	v.newName.Reset()
	v.newDesc.Reset()
	v.newColor.Reset()
	v.newName.Focus()
	v.newDesc.Blur()
	v.newColor.Blur()
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.db.DeleteProject(v.deleteTargetID); err == nil {
			return v, v.loadProjects
		}
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v.saveProject()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v.saveProject()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		v.newColor, cmd = v.newColor.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) saveProject() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		return v, nil
	}
	desc := strings.TrimSpace(v.newDesc.Value())
	color := strings.TrimSpace(v.newColor.Value())

	if v.editingID != 0 {
		patch := models.ProjectPatch{
			Name:        models.Some(name),
			Description: models.Some(desc),
		}
		if color != "" {
			patch.Color = models.Some(color)
		}
		if err := v.db.UpdateProject(v.editingID, patch); err != nil {
			return v, nil
		}
		v.creating = false
		return v, v.loadProjects
	}

	project, err := v.db.CreateProject(models.NewProject{
		Name:        name,
		Description: desc,
		Color:       color,
		ParentID:    v.formParentID,
	})
	if err != nil {
		return v, nil
	}
	v.creating = false
	return v, func() tea.Msg {
		return SelectedProject{Project: *project}
	}
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	v.newColor.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	case 2:
		v.newColor.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Project"
	if v.editingID != 0 {
		formTitle = "Edit Project"
	} else if v.formParentID != nil {
		formTitle = "New Sub-project"
	}

	nameStyle := s.Input
	descStyle := s.Input
	colorStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		colorStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	colorLabel := "Color (hex):"
	if v.formParentID != nil && v.editingID == 0 {
		// Sub-projects get a shade of the parent color unless one is set
		colorLabel = "Color (hex, blank = parent shade):"
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		colorLabel,
		colorStyle.Width(14).Render(v.newColor.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s sub • %s edit • %s del • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("s") + "      new sub-project",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("a") + "      archive / unarchive",
		s.HelpKey.Render("A") + "      show archived",
		s.HelpKey.Render("J/K") + "    move in list",
		s.HelpKey.Render("/") + "      filter",
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

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and everything under it will be removed.", v.deleteTargetName)),
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
