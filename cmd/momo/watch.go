package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fsChangeMsg is sent when the session log directory changes on disk.
type fsChangeMsg struct{}

// logsWatcher wraps an fsnotify watcher on the session log directory so the
// logs view refreshes when a headless run writes a new file.
type logsWatcher struct {
	w *fsnotify.Watcher
}

// newLogsWatcher starts watching dir. Returns nil if the directory does not
// exist or the watcher cannot be created; the logs view then shows a static
// listing.
func newLogsWatcher(dir string) *logsWatcher {
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil
	}
	return &logsWatcher{w: w}
}

// wait returns a tea.Cmd that blocks until the directory changes, debouncing
// event bursts so one new log file yields one refresh.
func (lw *logsWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		debounce := time.NewTimer(0)
		if !debounce.Stop() {
			<-debounce.C
		}
		defer debounce.Stop()

		armed := false
		for {
			select {
			case _, ok := <-lw.w.Events:
				if !ok {
					return nil
				}
				if !debounce.Stop() && armed {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(100 * time.Millisecond)
				armed = true

			case <-debounce.C:
				return fsChangeMsg{}

			case _, ok := <-lw.w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

// close stops the watcher; any blocked wait command returns without a message.
func (lw *logsWatcher) close() {
	_ = lw.w.Close()
}

// readLogFileCmd returns a tea.Cmd that loads one session log for viewing.
// The name must be a bare filename from the listing, never a path.
func readLogFileCmd(dir, name string) tea.Cmd {
	return func() tea.Msg {
		if name != filepath.Base(name) || !strings.HasSuffix(name, ".log") {
			return logFileMsg{err: fmt.Errorf("invalid log name %q", name)}
		}
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return logFileMsg{err: err}
		}
		defer f.Close()

		var lines []string
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return logFileMsg{err: err}
		}
		return logFileMsg{name: name, lines: lines}
	}
}
