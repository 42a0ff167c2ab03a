package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"momo/pkg/registry"
	"momo/pkg/runner"
)

// testApp wires a model against a fake catalog, a temp log dir, and no
// history store.
func testApp(t *testing.T, specs []registry.TestSpec, avail map[string]bool) *app {
	t.Helper()
	reg := registry.New(specs, registry.WithLookPath(func(tool string) (string, error) {
		if avail[tool] {
			return "/usr/bin/" + tool, nil
		}
		return "", errors.New("not found")
	}))
	return &app{
		paths: &Paths{LogDir: t.TempDir()},
		cfg:   DefaultConfig(),
		reg:   reg,
		run:   runner.New(reg, t.TempDir()),
	}
}

func quickSpec(name string) registry.TestSpec {
	return registry.TestSpec{Name: name, Argv: []string{"sh", "-c", "echo " + name}, Tool: "sh"}
}

// TestMenuItems verifies the catalog rows are followed by the fixed actions.
func TestMenuItems(t *testing.T) {
	a := testApp(t, []registry.TestSpec{quickSpec("Alpha"), quickSpec("Beta")}, map[string]bool{"sh": true})
	m := newModel(a)

	items := m.menuItems()
	want := []string{"Alpha", "Beta", menuRunAll, menuViewLogs, menuExit}
	if len(items) != len(want) {
		t.Fatalf("menuItems() = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("menuItems()[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

// TestMenuNavigationClamps verifies the cursor stays within the menu.
func TestMenuNavigationClamps(t *testing.T) {
	a := testApp(t, []registry.TestSpec{quickSpec("Alpha")}, map[string]bool{"sh": true})
	m := newModel(a)

	mm, _ := m.handleMenuKeys("up")
	m = mm.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor after up at top = %d, want 0", m.cursor)
	}

	// 1 test + 3 action rows: last index is 3.
	for i := 0; i < 10; i++ {
		mm, _ = m.handleMenuKeys("j")
		m = mm.(Model)
	}
	if m.cursor != 3 {
		t.Errorf("cursor after overshoot = %d, want 3", m.cursor)
	}
}

// TestMenuRefusesMissingTools verifies unavailable tests are flagged in the
// menu and that selecting one is refused with a notice instead of launching.
func TestMenuRefusesMissingTools(t *testing.T) {
	specs := []registry.TestSpec{
		quickSpec("Alpha"),
		{Name: "Memory Test", Argv: []string{"memtester", "1024", "1"}, Tool: "memtester"},
	}
	a := testApp(t, specs, map[string]bool{"sh": true})
	m := newModel(a)

	out := m.renderMenu()
	if !strings.Contains(out, "[MISSING]") {
		t.Errorf("renderMenu() missing [MISSING] marker, got:\n%s", out)
	}

	mm, cmd := m.selectMenuItem("Memory Test")
	m = mm.(Model)
	if m.activeView != MenuView {
		t.Fatalf("activeView = %v, want MenuView", m.activeView)
	}
	if m.flash == "" || !strings.Contains(m.flash, "memtester") {
		t.Errorf("flash = %q, want a notice naming the missing tool", m.flash)
	}
	if cmd != nil {
		t.Error("refusal must not dispatch a command")
	}
	if m.app.run.Current() != nil {
		t.Error("refusal must not start a run")
	}
}

// TestSelectDeviceTestOpensDiskPicker verifies a device-parameterised test
// goes through the picker instead of running directly.
func TestSelectDeviceTestOpensDiskPicker(t *testing.T) {
	spec := registry.TestSpec{
		Name: "Disk Speed Test",
		Argv: []string{"hdparm", "-tT", registry.DevicePlaceholder},
		Tool: "hdparm",
	}
	a := testApp(t, []registry.TestSpec{spec}, map[string]bool{"hdparm": true})
	m := newModel(a)

	mm, cmd := m.selectMenuItem("Disk Speed Test")
	m = mm.(Model)
	if m.pendingDisk == nil || m.pendingDisk.Name != "Disk Speed Test" {
		t.Fatalf("pendingDisk = %+v, want Disk Speed Test", m.pendingDisk)
	}
	if cmd == nil {
		t.Error("selectMenuItem() returned nil cmd, want disk fetch")
	}
	if m.current != nil {
		t.Error("device test must not start before a disk is chosen")
	}
}

// TestRunAllSkipsDeviceTests verifies run-all queues every test except the
// device-parameterised ones.
func TestRunAllSkipsDeviceTests(t *testing.T) {
	specs := []registry.TestSpec{
		quickSpec("Alpha"),
		{Name: "Disk Speed Test", Argv: []string{"hdparm", "-tT", registry.DevicePlaceholder}, Tool: "hdparm"},
		quickSpec("Beta"),
	}
	a := testApp(t, specs, map[string]bool{"sh": true, "hdparm": true})
	m := newModel(a)

	mm, _ := m.startRunAll()
	m = mm.(Model)
	if !m.runningAll {
		t.Fatal("runningAll = false after startRunAll")
	}
	if m.runName != "Alpha" {
		t.Errorf("first run = %q, want Alpha", m.runName)
	}
	if len(m.queue) != 1 || m.queue[0] != "Beta" {
		t.Errorf("queue = %v, want [Beta]", m.queue)
	}
	if run := m.app.run.Current(); run != nil {
		<-run.Done()
	}
}

// TestRunDoneAdvancesQueue verifies the next queued test starts when one
// finishes, including after the user stops a single test mid-sequence.
func TestRunDoneAdvancesQueue(t *testing.T) {
	a := testApp(t, []registry.TestSpec{quickSpec("Alpha"), quickSpec("Beta")}, map[string]bool{"sh": true})
	m := newModel(a)
	m.runningAll = true
	m.queue = []string{"Beta"}

	mm, _ := m.handleRunDone(runner.Outcome{Test: "Alpha", Status: runner.StatusCompleted})
	m = mm.(Model)
	if m.runName != "Beta" {
		t.Errorf("runName = %q, want Beta", m.runName)
	}
	if len(m.queue) != 0 {
		t.Errorf("queue = %v, want empty", m.queue)
	}
	if run := m.app.run.Current(); run != nil {
		<-run.Done()
	}

	// Stopping one test ends only that test; the sequence continues.
	m.runningAll = true
	m.queue = []string{"Alpha"}
	mm, _ = m.handleRunDone(runner.Outcome{Test: "Beta", Status: runner.StatusCancelled})
	m = mm.(Model)
	if m.runName != "Alpha" {
		t.Errorf("runName after a stopped test = %q, want Alpha", m.runName)
	}
	if !m.runningAll {
		t.Error("runningAll must survive a single stopped test")
	}
	if run := m.app.run.Current(); run != nil {
		<-run.Done()
	}

	// esc empties the queue before cancelling, which ends the sequence.
	m.runningAll = true
	m.queue = nil
	mm, _ = m.handleRunDone(runner.Outcome{Test: "Alpha", Status: runner.StatusCancelled})
	m = mm.(Model)
	if m.runningAll || m.queue != nil {
		t.Errorf("empty queue must end run-all, got runningAll=%v queue=%v", m.runningAll, m.queue)
	}
}

// TestRunViewScrolling verifies scroll keys clamp and toggle follow mode.
func TestRunViewScrolling(t *testing.T) {
	a := testApp(t, []registry.TestSpec{quickSpec("Alpha")}, map[string]bool{"sh": true})
	m := newModel(a)
	m.height = 15 // body height 10
	for i := 0; i < 30; i++ {
		m.buf.Append("line")
	}
	m.scrollTop = m.buf.MaxTop(m.bodyHeight())
	m.follow = true

	mm, _ := m.handleRunViewKeys("k")
	m = mm.(Model)
	if m.follow {
		t.Error("scrolling up must leave follow mode")
	}
	if m.scrollTop != 19 {
		t.Errorf("scrollTop = %d, want 19", m.scrollTop)
	}

	mm, _ = m.handleRunViewKeys("g")
	m = mm.(Model)
	if m.scrollTop != 0 {
		t.Errorf("scrollTop after g = %d, want 0", m.scrollTop)
	}

	mm, _ = m.handleRunViewKeys("G")
	m = mm.(Model)
	if !m.follow || m.scrollTop != 20 {
		t.Errorf("after G: follow=%v scrollTop=%d, want true/20", m.follow, m.scrollTop)
	}

	mm, _ = m.handleRunViewKeys("j")
	m = mm.(Model)
	if m.scrollTop != 20 {
		t.Errorf("scrollTop past bottom = %d, want 20", m.scrollTop)
	}
}

// TestRunViewReturnsToMenu verifies enter leaves a finished run view.
func TestRunViewReturnsToMenu(t *testing.T) {
	a := testApp(t, []registry.TestSpec{quickSpec("Alpha")}, map[string]bool{"sh": true})
	m := newModel(a)
	m.activeView = RunView
	m.outcome = &runner.Outcome{Test: "Alpha", Status: runner.StatusCompleted}

	mm, _ := m.handleRunViewKeys("enter")
	m = mm.(Model)
	if m.activeView != MenuView {
		t.Errorf("activeView = %v, want MenuView", m.activeView)
	}
	if m.outcome != nil {
		t.Error("outcome must be cleared when leaving the run view")
	}
}

// TestDiskPickNavigation verifies picker cursor clamping and escape.
func TestDiskPickNavigation(t *testing.T) {
	a := testApp(t, nil, nil)
	m := newModel(a)
	m.activeView = DiskPickView
	spec := registry.TestSpec{Name: "Disk Speed Test", Argv: []string{"hdparm", registry.DevicePlaceholder}, Tool: "hdparm"}
	m.pendingDisk = &spec
	m.diskList = nil

	mm, _ := m.handleDiskPickKeys("j")
	m = mm.(Model)
	if m.diskCursor != 0 {
		t.Errorf("diskCursor with empty list = %d, want 0", m.diskCursor)
	}

	mm, _ = m.handleDiskPickKeys("esc")
	m = mm.(Model)
	if m.activeView != MenuView || m.pendingDisk != nil {
		t.Errorf("esc must return to the menu and drop the pending test")
	}
}

// TestLogFileScrollClamp verifies the log file viewer clamps its window.
func TestLogFileScrollClamp(t *testing.T) {
	a := testApp(t, nil, nil)
	m := newModel(a)
	m.height = 15 // body height 10
	m.fileLines = make([]string, 25)

	if got := m.fileMaxTop(); got != 15 {
		t.Fatalf("fileMaxTop() = %d, want 15", got)
	}

	mm, _ := m.handleLogFileKeys("G")
	m = mm.(Model)
	if m.fileTop != 15 {
		t.Errorf("fileTop after G = %d, want 15", m.fileTop)
	}

	mm, _ = m.handleLogFileKeys("pgdown")
	m = mm.(Model)
	if m.fileTop != 15 {
		t.Errorf("fileTop past end = %d, want 15", m.fileTop)
	}

	mm, _ = m.handleLogFileKeys("pgup")
	m = mm.(Model)
	if m.fileTop != 5 {
		t.Errorf("fileTop after pgup = %d, want 5", m.fileTop)
	}
}

// TestReadLogFileCmd verifies log loading and the bare-filename guard.
func TestReadLogFileCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Alpha_2025-11-03_14-02-59.log")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	msg := readLogFileCmd(dir, "Alpha_2025-11-03_14-02-59.log")()
	got, ok := msg.(logFileMsg)
	if !ok {
		t.Fatalf("msg = %T, want logFileMsg", msg)
	}
	if got.err != nil {
		t.Fatalf("err = %v", got.err)
	}
	if len(got.lines) != 2 || got.lines[0] != "one" || got.lines[1] != "two" {
		t.Errorf("lines = %v, want [one two]", got.lines)
	}

	msg = readLogFileCmd(dir, "../etc/passwd")()
	if got := msg.(logFileMsg); got.err == nil {
		t.Error("path traversal name must be rejected")
	}
	msg = readLogFileCmd(dir, "notes.txt")()
	if got := msg.(logFileMsg); got.err == nil {
		t.Error("non-.log name must be rejected")
	}
}

// TestQuitKeys verifies ctrl+c quits from any view.
func TestQuitKeys(t *testing.T) {
	a := testApp(t, nil, nil)
	m := newModel(a)
	for _, view := range []ViewType{MenuView, RunView, LogsView, DiskPickView, LogFileView} {
		m.activeView = view
		_, cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Errorf("ctrl+c in view %v returned nil cmd, want quit", view)
		}
	}
}
