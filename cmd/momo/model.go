package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"momo/pkg/disks"
	"momo/pkg/registry"
	"momo/pkg/runner"
	"momo/pkg/scrollback"
	"momo/pkg/sessionlog"
)

// runUpdateMsg is sent when the active run has produced new output lines.
type runUpdateMsg struct{}

// runDoneMsg carries the outcome of a finished run.
type runDoneMsg struct {
	outcome runner.Outcome
}

// cancelledMsg is sent after a cancel request has been delivered.
type cancelledMsg struct{}

// disksMsg carries the block devices discovered for the disk picker.
type disksMsg struct {
	disks []disks.Disk
	err   error
}

// logsMsg carries the session log filenames, newest first.
type logsMsg struct {
	names []string
	err   error
}

// logFileMsg carries the content of a single session log.
type logFileMsg struct {
	name  string
	lines []string
	err   error
}

// waitForRunCmd blocks until the active run produces output or finishes.
func waitForRunCmd(run *runner.Run) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-run.Updates():
			return runUpdateMsg{}
		case <-run.Done():
			return runDoneMsg{outcome: run.Outcome()}
		}
	}
}

// cancelRunCmd requests cancellation off the UI goroutine; Cancel blocks
// until the process group is gone, up to the grace period.
func cancelRunCmd(run *runner.Run) tea.Cmd {
	return func() tea.Msg {
		_ = run.Cancel()
		return cancelledMsg{}
	}
}

// fetchDisksCmd returns a tea.Cmd that enumerates block devices via lsblk.
func fetchDisksCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		found, err := disks.List(ctx, disks.ExecRunner{})
		return disksMsg{disks: found, err: err}
	}
}

// fetchLogsCmd returns a tea.Cmd that lists session logs in dir.
func fetchLogsCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		names, err := sessionlog.List(dir)
		return logsMsg{names: names, err: err}
	}
}

// ViewType represents the different screens of the momo TUI.
type ViewType int

const (
	// MenuView shows the test catalog.
	MenuView ViewType = iota
	// RunView shows the scrollable output of the active or finished run.
	RunView
	// DiskPickView shows the block-device picker for disk tests.
	DiskPickView
	// LogsView shows the session log listing.
	LogsView
	// LogFileView shows the content of a single session log.
	LogFileView
)

// Model is the Bubble Tea model for the momo test menu.
type Model struct {
	app        *app
	theme      Theme
	activeView ViewType

	// UI state
	width  int
	height int
	cursor int    // Index of the selected menu item
	flash  string // Transient notice shown below the menu

	// Run state
	buf        *scrollback.Buffer
	current    *runner.Run
	runName    string
	outcome    *runner.Outcome // Set once the shown run has finished
	queue      []string        // Remaining test names during run-all
	runningAll bool
	spin       spinner.Model
	scrollTop  int
	follow     bool

	// Disk picker state
	pendingDisk *registry.TestSpec
	diskList    []disks.Disk
	diskCursor  int
	diskErr     error

	// Logs view state
	logNames   []string
	logCursor  int
	logErr     error
	logWatcher *logsWatcher

	// Log file view state
	fileName  string
	fileLines []string
	fileTop   int
}

// newModel creates a Model showing the test catalog.
func newModel(a *app) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		app:    a,
		theme:  DefaultTheme(),
		buf:    scrollback.New(a.cfg.ScrollbackLines),
		spin:   sp,
		follow: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.current == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case runUpdateMsg:
		if m.current == nil {
			return m, nil
		}
		if m.follow {
			m.scrollTop = m.buf.MaxTop(m.bodyHeight())
		}
		return m, waitForRunCmd(m.current)

	case runDoneMsg:
		return m.handleRunDone(msg.outcome)

	case cancelledMsg:
		return m, nil

	case disksMsg:
		m.diskList = msg.disks
		m.diskErr = msg.err
		m.diskCursor = 0
		m.activeView = DiskPickView

	case logsMsg:
		m.logNames = msg.names
		m.logErr = msg.err
		if m.logCursor >= len(m.logNames) {
			m.logCursor = 0
		}
		if m.activeView != LogFileView {
			m.activeView = LogsView
		}

	case logFileMsg:
		if msg.err != nil {
			m.logErr = msg.err
			return m, nil
		}
		m.fileName = msg.name
		m.fileLines = msg.lines
		m.fileTop = 0
		m.activeView = LogFileView

	case fsChangeMsg:
		if m.logWatcher == nil {
			return m, nil
		}
		return m, tea.Batch(fetchLogsCmd(m.app.logDir()), m.logWatcher.wait())
	}

	return m, nil
}

// handleRunDone records the outcome, then either advances the run-all queue
// or leaves the finished output on screen.
func (m Model) handleRunDone(outcome runner.Outcome) (tea.Model, tea.Cmd) {
	m.outcome = &outcome
	m.current = nil

	if m.app.store != nil {
		// History persistence is best effort in the TUI.
		_ = m.app.store.Record(context.Background(), outcome)
	}

	// Stopping one test ends only that test. The esc handler empties the
	// queue before cancelling, so entries left here always mean keep going.
	if m.runningAll && len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		spec, err := m.app.reg.Resolve(next)
		if err != nil {
			// Catalog cannot change mid-session; skip defensively.
			return m.handleRunDone(outcome)
		}
		return m.startRun(spec)
	}

	m.runningAll = false
	m.queue = nil
	return m, nil
}

// startRun resets the output pane and launches spec on the shared runner.
func (m Model) startRun(spec registry.TestSpec) (tea.Model, tea.Cmd) {
	m.buf.Reset()
	m.scrollTop = 0
	m.follow = true
	m.outcome = nil
	m.flash = ""

	run, err := m.app.run.Start(spec, m.buf)
	if err != nil {
		m.flash = err.Error()
		m.activeView = MenuView
		return m, nil
	}
	m.current = run
	m.runName = spec.Name
	m.activeView = RunView
	return m, tea.Batch(waitForRunCmd(run), m.spin.Tick)
}

// handleKeyPress processes keyboard input and returns updated model with optional command.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.activeView {
	case RunView:
		return m.handleRunViewKeys(key)
	case DiskPickView:
		return m.handleDiskPickKeys(key)
	case LogsView:
		return m.handleLogsViewKeys(key)
	case LogFileView:
		return m.handleLogFileKeys(key)
	default: // MenuView
		return m.handleMenuKeys(key)
	}
}

// Extra menu rows appended after the test catalog.
const (
	menuRunAll   = "Run All Tests"
	menuViewLogs = "View Logs"
	menuExit     = "Exit"
)

// menuItems returns the catalog names followed by the fixed action rows.
func (m Model) menuItems() []string {
	items := m.app.reg.Names()
	return append(items, menuRunAll, menuViewLogs, menuExit)
}

// handleMenuKeys processes keyboard input in MenuView.
func (m Model) handleMenuKeys(key string) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch key {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		return m.startRunAll()
	case "l":
		return m.enterLogsView()
	case "enter":
		return m.selectMenuItem(items[m.cursor])
	}
	return m, nil
}

// selectMenuItem dispatches the highlighted menu row.
func (m Model) selectMenuItem(item string) (tea.Model, tea.Cmd) {
	switch item {
	case menuRunAll:
		return m.startRunAll()
	case menuViewLogs:
		return m.enterLogsView()
	case menuExit:
		return m, tea.Quit
	}

	spec, err := m.app.reg.Resolve(item)
	if err != nil {
		m.flash = err.Error()
		return m, nil
	}
	if !m.app.reg.IsAvailable(spec) {
		m.flash = fmt.Sprintf("%s: required tool %q is not installed", spec.Name, spec.Tool)
		return m, nil
	}
	if spec.NeedsDevice() {
		m.pendingDisk = &spec
		return m, fetchDisksCmd()
	}
	return m.startRun(spec)
}

// startRunAll queues every test that does not need a device and starts the
// first one. Missing tools are not filtered: each such test yields its own
// tool-missing outcome, so the sweep reports every gap in one pass.
func (m Model) startRunAll() (tea.Model, tea.Cmd) {
	var queue []string
	for _, spec := range m.app.reg.Specs() {
		if spec.NeedsDevice() {
			continue
		}
		queue = append(queue, spec.Name)
	}
	if len(queue) == 0 {
		m.flash = "no runnable tests in the catalog"
		return m, nil
	}

	first := queue[0]
	m.queue = queue[1:]
	m.runningAll = true
	spec, err := m.app.reg.Resolve(first)
	if err != nil {
		m.runningAll = false
		m.queue = nil
		m.flash = err.Error()
		return m, nil
	}
	return m.startRun(spec)
}

// handleRunViewKeys processes keyboard input in RunView.
func (m Model) handleRunViewKeys(key string) (tea.Model, tea.Cmd) {
	if m.current != nil {
		switch key {
		case "s", "q":
			return m, cancelRunCmd(m.current)
		case "esc":
			// Abort the whole run-all sequence, not just the active test.
			m.queue = nil
			m.runningAll = false
			return m, cancelRunCmd(m.current)
		}
	} else {
		switch key {
		case "enter", "esc", "q":
			m.activeView = MenuView
			m.outcome = nil
			return m, nil
		}
	}

	switch key {
	case "j", "down":
		max := m.buf.MaxTop(m.bodyHeight())
		if m.scrollTop < max {
			m.scrollTop++
		}
		m.follow = m.scrollTop >= max
	case "k", "up":
		if m.scrollTop > 0 {
			m.scrollTop--
		}
		m.follow = false
	case "pgdown":
		max := m.buf.MaxTop(m.bodyHeight())
		m.scrollTop += m.bodyHeight()
		if m.scrollTop >= max {
			m.scrollTop = max
			m.follow = true
		}
	case "pgup":
		m.scrollTop -= m.bodyHeight()
		if m.scrollTop < 0 {
			m.scrollTop = 0
		}
		m.follow = false
	case "g":
		m.scrollTop = 0
		m.follow = false
	case "G":
		m.scrollTop = m.buf.MaxTop(m.bodyHeight())
		m.follow = true
	}
	return m, nil
}

// handleDiskPickKeys processes keyboard input in DiskPickView.
func (m Model) handleDiskPickKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.activeView = MenuView
		m.pendingDisk = nil
	case "j", "down":
		if m.diskCursor < len(m.diskList)-1 {
			m.diskCursor++
		}
	case "k", "up":
		if m.diskCursor > 0 {
			m.diskCursor--
		}
	case "enter":
		if m.pendingDisk == nil || m.diskCursor >= len(m.diskList) {
			return m, nil
		}
		spec := m.pendingDisk.WithDevice(m.diskList[m.diskCursor].Path())
		m.pendingDisk = nil
		return m.startRun(spec)
	}
	return m, nil
}

// enterLogsView lists the session logs and starts watching the directory.
func (m Model) enterLogsView() (tea.Model, tea.Cmd) {
	m.logCursor = 0
	cmds := []tea.Cmd{fetchLogsCmd(m.app.logDir())}
	if m.logWatcher == nil {
		if w := newLogsWatcher(m.app.logDir()); w != nil {
			m.logWatcher = w
			cmds = append(cmds, w.wait())
		}
	}
	return m, tea.Batch(cmds...)
}

// handleLogsViewKeys processes keyboard input in LogsView.
func (m Model) handleLogsViewKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.activeView = MenuView
		if m.logWatcher != nil {
			m.logWatcher.close()
			m.logWatcher = nil
		}
	case "j", "down":
		if m.logCursor < len(m.logNames)-1 {
			m.logCursor++
		}
	case "k", "up":
		if m.logCursor > 0 {
			m.logCursor--
		}
	case "enter":
		if m.logCursor >= len(m.logNames) {
			return m, nil
		}
		return m, readLogFileCmd(m.app.logDir(), m.logNames[m.logCursor])
	}
	return m, nil
}

// handleLogFileKeys processes keyboard input in LogFileView.
func (m Model) handleLogFileKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q", "backspace":
		m.activeView = LogsView
		m.fileLines = nil
		m.fileName = ""
	case "j", "down":
		if m.fileTop < m.fileMaxTop() {
			m.fileTop++
		}
	case "k", "up":
		if m.fileTop > 0 {
			m.fileTop--
		}
	case "pgdown":
		m.fileTop += m.bodyHeight()
		if m.fileTop > m.fileMaxTop() {
			m.fileTop = m.fileMaxTop()
		}
	case "pgup":
		m.fileTop -= m.bodyHeight()
		if m.fileTop < 0 {
			m.fileTop = 0
		}
	case "g":
		m.fileTop = 0
	case "G":
		m.fileTop = m.fileMaxTop()
	}
	return m, nil
}

// fileMaxTop returns the highest valid scroll offset for the open log file.
func (m Model) fileMaxTop() int {
	max := len(m.fileLines) - m.bodyHeight()
	if max < 0 {
		return 0
	}
	return max
}

// bodyHeight returns the number of rows available to scrolling content,
// leaving room for the title, header, and help lines.
func (m Model) bodyHeight() int {
	h := m.height - 5
	if h < 1 {
		return 1
	}
	return h
}
