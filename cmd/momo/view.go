package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"momo/pkg/runner"
)

// View implements tea.Model.
func (m Model) View() string {
	title := m.theme.titleStyle().Render("momo — system test menu")

	var body string
	switch m.activeView {
	case RunView:
		body = m.renderRunView()
	case DiskPickView:
		body = m.renderDiskPick()
	case LogsView:
		body = m.renderLogsView()
	case LogFileView:
		body = m.renderLogFile()
	default:
		body = m.renderMenu()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// renderMenu renders the test catalog with the fixed action rows.
func (m Model) renderMenu() string {
	var b strings.Builder
	b.WriteString("\n")

	for i, item := range m.menuItems() {
		label := item
		if spec, err := m.app.reg.Resolve(item); err == nil {
			if !m.app.reg.IsAvailable(spec) {
				label = m.theme.mutedStyle().Render(item + "  [MISSING]")
			}
		}
		if i == m.cursor {
			b.WriteString(m.theme.selectedStyle().Render("▸ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString("\n" + m.theme.statusStyle("failed").Render(m.flash) + "\n")
	}
	b.WriteString("\n" + m.theme.mutedStyle().Render("↑↓ navigate · enter run · a run all · l logs · q quit"))
	return b.String()
}

// renderRunView renders the output pane for the active or finished run.
func (m Model) renderRunView() string {
	var header string
	if m.current != nil {
		header = fmt.Sprintf("%s Running: %s", m.spin.View(), m.runName)
		if m.runningAll {
			header += m.theme.mutedStyle().Render(fmt.Sprintf("  (%d queued)", len(m.queue)))
		}
	} else if m.outcome != nil {
		status := m.outcome.Status.String()
		header = fmt.Sprintf("Finished: %s — %s", m.runName, m.theme.statusStyle(status).Render(status))
		if m.outcome.Status == runner.StatusCompleted {
			header += m.theme.mutedStyle().Render(fmt.Sprintf("  (exit %d, %s)", m.outcome.ExitCode, m.outcome.Duration.Round(10*time.Millisecond)))
		}
		if m.outcome.LogPath != "" {
			header += "\n" + m.theme.mutedStyle().Render("log: "+m.outcome.LogPath)
		}
	} else {
		header = "Finished: " + m.runName
	}

	pane := strings.Join(m.buf.VisibleWindow(m.scrollTop, m.bodyHeight()), "\n")

	var help string
	if m.current != nil {
		help = "s stop"
		if m.runningAll {
			help += " · esc abort all"
		}
		help += " · ↑↓ scroll"
	} else {
		help = "enter back · ↑↓ scroll"
	}
	if !m.follow && m.current != nil {
		help += " · G follow"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		pane,
		"",
		m.theme.mutedStyle().Render(help),
	)
}

// renderDiskPick renders the block-device picker.
func (m Model) renderDiskPick() string {
	var b strings.Builder
	name := ""
	if m.pendingDisk != nil {
		name = m.pendingDisk.Name
	}
	b.WriteString(fmt.Sprintf("\nSelect a disk for %s:\n\n", name))

	if m.diskErr != nil {
		b.WriteString(m.theme.statusStyle("failed").Render("lsblk: "+m.diskErr.Error()) + "\n")
	} else if len(m.diskList) == 0 {
		b.WriteString(m.theme.mutedStyle().Render("no disks found") + "\n")
	}
	for i, d := range m.diskList {
		if i == m.diskCursor {
			b.WriteString(m.theme.selectedStyle().Render("▸ " + d.String()))
		} else {
			b.WriteString("  " + d.String())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.theme.mutedStyle().Render("↑↓ navigate · enter run · esc back"))
	return b.String()
}

// renderLogsView renders the session log listing, newest first.
func (m Model) renderLogsView() string {
	var b strings.Builder
	b.WriteString("\nSession logs in " + m.app.logDir() + ":\n\n")

	if m.logErr != nil {
		b.WriteString(m.theme.statusStyle("failed").Render(m.logErr.Error()) + "\n")
	} else if len(m.logNames) == 0 {
		b.WriteString(m.theme.mutedStyle().Render("no logs yet") + "\n")
	}

	visible := m.logNames
	top := 0
	if m.logCursor >= m.bodyHeight() {
		top = m.logCursor - m.bodyHeight() + 1
	}
	if top < len(visible) {
		visible = visible[top:]
	}
	if len(visible) > m.bodyHeight() {
		visible = visible[:m.bodyHeight()]
	}
	for i, name := range visible {
		if top+i == m.logCursor {
			b.WriteString(m.theme.selectedStyle().Render("▸ " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.theme.mutedStyle().Render("↑↓ navigate · enter view · esc back"))
	return b.String()
}

// renderLogFile renders the content of the opened session log.
func (m Model) renderLogFile() string {
	end := m.fileTop + m.bodyHeight()
	if end > len(m.fileLines) {
		end = len(m.fileLines)
	}
	start := m.fileTop
	if start > end {
		start = end
	}
	pane := strings.Join(m.fileLines[start:end], "\n")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.fileName,
		"",
		pane,
		"",
		m.theme.mutedStyle().Render("↑↓ scroll · esc back"),
	)
}
