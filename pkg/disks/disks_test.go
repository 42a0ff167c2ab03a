package disks_test

import (
	"context"
	"errors"
	"testing"

	"momo/pkg/disks"
)

// fakeRunner returns canned output for the lsblk invocation.
type fakeRunner struct {
	out string
	err error
}

func (f fakeRunner) Run(context.Context, string, ...string) ([]byte, error) {
	return []byte(f.out), f.err
}

// TestList_FiltersToWholeDisks verifies that partitions, loop devices, and
// rom drives are excluded.
func TestList_FiltersToWholeDisks(t *testing.T) {
	out := `sda     disk 476.9G
sda1    part   512M
nvme0n1 disk 931.5G
loop0   loop  55.7M
sr0     rom   1024M
`
	got, err := disks.List(context.Background(), fakeRunner{out: out})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d disks, want 2: %v", len(got), got)
	}
	if got[0].Name != "sda" || got[0].Size != "476.9G" {
		t.Errorf("disk[0] = %+v", got[0])
	}
	if got[1].Path() != "/dev/nvme0n1" {
		t.Errorf("disk[1].Path() = %q", got[1].Path())
	}
}

// TestList_EmptyOutput verifies graceful handling of no disks.
func TestList_EmptyOutput(t *testing.T) {
	got, err := disks.List(context.Background(), fakeRunner{out: ""})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

// TestList_CommandError verifies error propagation when lsblk fails.
func TestList_CommandError(t *testing.T) {
	wantErr := errors.New("lsblk: not found")
	_, err := disks.List(context.Background(), fakeRunner{err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

// TestDisk_String covers the picker label rendering.
func TestDisk_String(t *testing.T) {
	d := disks.Disk{Name: "sda", Size: "256G"}
	if got := d.String(); got != "/dev/sda (256G)" {
		t.Errorf("String() = %q", got)
	}
	bare := disks.Disk{Name: "sdb"}
	if got := bare.String(); got != "/dev/sdb" {
		t.Errorf("String() without size = %q", got)
	}
}
