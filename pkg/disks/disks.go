// Package disks enumerates block devices for the device-parameterised
// diagnostic tests (SMART status, disk speed).
package disks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes a command and returns its stdout. Abstracted so
// tests can feed canned lsblk output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes a command and returns its stdout as bytes.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Disk is one whole block device.
type Disk struct {
	Name string // device name, e.g. "sda" or "nvme0n1"
	Size string // human-readable size as reported by lsblk, e.g. "256G"
}

// Path returns the /dev path for the device.
func (d Disk) Path() string { return "/dev/" + d.Name }

// String renders the picker label, e.g. "/dev/sda (256G)".
func (d Disk) String() string {
	if d.Size == "" {
		return d.Path()
	}
	return fmt.Sprintf("%s (%s)", d.Path(), d.Size)
}

// List returns the whole disks reported by lsblk, skipping partitions,
// loop devices, and everything else that is not TYPE=disk.
func List(ctx context.Context, run CommandRunner) ([]Disk, error) {
	out, err := run.Run(ctx, "lsblk", "-dno", "NAME,TYPE,SIZE")
	if err != nil {
		return nil, fmt.Errorf("list disks: %w", err)
	}
	return parseLsblk(string(out)), nil
}

// parseLsblk extracts TYPE=disk rows from `lsblk -dno NAME,TYPE,SIZE`.
func parseLsblk(out string) []Disk {
	var disks []Disk
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != "disk" {
			continue
		}
		d := Disk{Name: fields[0]}
		if len(fields) >= 3 {
			d.Size = fields[2]
		}
		disks = append(disks, d)
	}
	return disks
}
