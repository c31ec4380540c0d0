package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/internal/logging"
	"github.com/valter-silva-au/supercraft/internal/observability"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

const dashboardRecentEvents = 8

type dashboardModel struct {
	width  int
	height int

	tasks table.Model

	// Data.
	state  *models.State
	alerts []observability.Alert
	recent []observability.Event

	// State.
	loading bool
	err     error

	watcher *fsnotify.Watcher
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	state  *models.State
	alerts []observability.Alert
	recent []observability.Event
	err    error
}

// stateChangedMsg reports that state.yaml was rewritten on disk.
type stateChangedMsg struct{}

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var taskColumns = []table.Column{
	{Title: " ", Width: 1},
	{Title: "ID", Width: 9},
	{Title: "Status", Width: 11},
	{Title: "Priority", Width: 8},
	{Title: "Title", Width: 40},
}

func newDashboardModel(watcher *fsnotify.Watcher) dashboardModel {
	t := table.New(
		table.WithColumns(taskColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	return dashboardModel{
		tasks:   t,
		loading: true,
		watcher: watcher,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	if m.watcher != nil {
		return tea.Batch(loadData, waitForStateChange(m.watcher))
	}
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil

	case stateChangedMsg:
		if m.watcher == nil {
			return m, loadData
		}
		return m, tea.Batch(loadData, waitForStateChange(m.watcher))

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.state = msg.state
		m.alerts = msg.alerts
		m.recent = msg.recent
		m.err = nil
		m.tasks.SetRows(taskRows(msg.state))
		return m, nil
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

// resizeTable stretches the title column and table height to the window.
func (m *dashboardModel) resizeTable() {
	cols := make([]table.Column, len(taskColumns))
	copy(cols, taskColumns)
	fixed := 0
	for _, c := range cols[:len(cols)-1] {
		fixed += c.Width + 2
	}
	if w := m.width - fixed - 8; w > 20 {
		cols[len(cols)-1].Width = w
	}
	m.tasks.SetColumns(cols)

	// Title, progress panel, activity panel and help take about 20 lines.
	if h := m.height - 20; h > 3 {
		m.tasks.SetHeight(h)
	}
}

func taskRows(st *models.State) []table.Row {
	if st == nil {
		return nil
	}
	rows := make([]table.Row, len(st.Tasks))
	for i, t := range st.Tasks {
		rows[i] = table.Row{statusIcon(t.Status), t.ID, string(t.Status), string(t.Priority), t.Title}
	}
	return rows
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Supercraft Dashboard ")
	help := helpStyle.Render("↑/↓: select | r: reload | q: quit")
	if m.watcher != nil {
		help += helpStyle.Render(" | live")
	}

	if m.loading && m.state == nil {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  %s\n\n%s", title, FormatError(m.err), help)
	}

	panelWidth := m.width - 4
	if panelWidth < 40 {
		panelWidth = 40
	}

	progress := panelStyle.Width(panelWidth).Render(m.renderProgressPanel())
	tasks := panelStyle.Width(panelWidth).Render(m.tasks.View())

	lower := m.renderActivityPanel()
	if len(m.alerts) > 0 {
		half := panelWidth/2 - 1
		lower = lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Width(half).Render(m.renderActivityPanel()),
			panelStyle.Width(half).Render(m.renderAlertsPanel()),
		)
	} else {
		lower = panelStyle.Width(panelWidth).Render(lower)
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s\n%s", title, progress, tasks, lower, help)
}

func (m dashboardModel) renderProgressPanel() string {
	st := m.state
	var b strings.Builder
	b.WriteString(headerStyle.Render(st.Project.Name))
	if st.Current != nil && st.Current.PlanName != "" {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %s / %s", st.Current.PlanName, st.Current.Phase)))
	}
	b.WriteString("\n")

	mt := st.Metrics
	b.WriteString(fmt.Sprintf("%s %d%%\n", core.FormatProgress(mt.ProgressPercent), mt.ProgressPercent))
	b.WriteString(fmt.Sprintf("%s  %s  %s  %s",
		statusCompleted.Render(fmt.Sprintf("completed %d", mt.Completed)),
		statusInProgress.Render(fmt.Sprintf("in progress %d", mt.InProgress)),
		statusPending.Render(fmt.Sprintf("pending %d", mt.Pending)),
		statusBlocked.Render(fmt.Sprintf("blocked %d", mt.Blocked)),
	))
	return b.String()
}

func (m dashboardModel) renderActivityPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent activity"))
	b.WriteString("\n")

	if len(m.recent) == 0 {
		b.WriteString("  No events recorded.")
		return b.String()
	}
	for _, e := range m.recent {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(e.Time.Local().Format("01-02 15:04")), describeEvent(e)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")
	for _, a := range m.alerts {
		sev := styleForSeverity(string(a.Severity)).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	if TaskMgr == nil {
		result.err = fmt.Errorf("task manager not initialized")
		return result
	}
	st, err := TaskMgr.State()
	if err != nil {
		result.err = err
		return result
	}
	result.state = st

	if ActivityCalc != nil {
		recent, err := ActivityCalc.Recent(dashboardRecentEvents)
		if err != nil {
			result.err = fmt.Errorf("loading activity: %w", err)
			return result
		}
		result.recent = recent
	}

	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate(st.Tasks, Now())
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = alerts
	}

	return result
}

// waitForStateChange blocks until the watched directory reports a change
// to state.yaml. Saves replace the file by rename, so creates and renames
// count as well as writes.
func waitForStateChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != filepath.Clean(StatePath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					return stateChangedMsg{}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				logging.Warn().Err(err).Msg("state watcher error")
			}
		}
	}
}

// newStateWatcher watches the directory holding state.yaml. A watcher that
// cannot be created only disables live reload.
func newStateWatcher() *fsnotify.Watcher {
	if StatePath == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn().Err(err).Msg("live reload disabled")
		return nil
	}
	if err := w.Add(filepath.Dir(StatePath)); err != nil {
		logging.Warn().Err(err).Str("dir", filepath.Dir(StatePath)).Msg("live reload disabled")
		_ = w.Close()
		return nil
	}
	return w
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for progress, tasks and activity",
	Long: `Launch an interactive terminal dashboard showing project progress, the
task table, recent activity and alerts.

The view reloads when state.yaml changes on disk. Press r to reload by hand
and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		// Fail fast before switching to the alternate screen.
		if _, err := TaskMgr.State(); err != nil {
			return err
		}

		watcher := newStateWatcher()
		if watcher != nil {
			defer watcher.Close()
		}

		p := tea.NewProgram(newDashboardModel(watcher), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
