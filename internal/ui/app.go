package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"tracka/internal/db"
	"tracka/internal/models"
	"tracka/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

// lastProjectKey is the settings row remembering which project was open
// when the program exited.
const lastProjectKey = "last_project_id"

// App routes between the two top-level screens.
type App struct {
	store    *db.DB
	active   View
	projects *views.ProjectListView
	tasks    *views.TaskListView
	width    int
	height   int
}

func NewApp(store *db.DB) *App {
	return &App{
		store:    store,
		active:   ViewProjects,
		projects: views.NewProjectListView(store),
	}
}

func (a *App) Init() tea.Cmd {
	if project, ok := a.lastProject(); ok {
		return a.openProject(project)
	}
	return a.projects.Init()
}

// lastProject resolves the remembered project, if any. A stale or
// unparseable setting just means starting at the project list.
func (a *App) lastProject() (models.Project, bool) {
	raw, err := a.store.GetSetting(lastProjectKey)
	if err != nil || raw == "" {
		return models.Project{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return models.Project{}, false
	}
	project, err := a.store.GetProject(id)
	if err != nil {
		return models.Project{}, false
	}
	return *project, true
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.active = ViewTasks
	a.tasks = views.NewTaskListView(a.store, project)
	a.store.SetSetting(lastProjectKey, strconv.FormatInt(project.ID, 10))

	// Fresh views need the current window size replayed
	return tea.Batch(a.tasks.Init(), a.resize())
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The project list persists across screens, keep its size current
		a.projects.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.active = ViewProjects
		a.tasks = nil
		a.store.SetSetting(lastProjectKey, "")
		return a, tea.Batch(a.projects.Init(), a.resize())
	}

	var cmd tea.Cmd
	if a.active == ViewTasks && a.tasks != nil {
		_, cmd = a.tasks.Update(msg)
	} else {
		_, cmd = a.projects.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.active == ViewTasks && a.tasks != nil {
		return a.tasks.View()
	}
	return a.projects.View()
}
