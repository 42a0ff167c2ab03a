package registry

// Builtins returns the stock diagnostic catalog. Smart Status and Disk Speed
// carry a device placeholder and require disk selection before launch.
func Builtins() []TestSpec {
	return []TestSpec{
		{Name: "RAM Usage", Argv: []string{"free", "-h"}, Tool: "free"},
		{Name: "RAM Details", Argv: []string{"cat", "/proc/meminfo"}, Tool: "cat"},
		{Name: "RAM Stress Test (30s)", Argv: []string{"stress-ng", "--vm", "2", "--vm-bytes", "75%", "--cpu", "2", "--timeout", "30s"}, Tool: "stress-ng"},
		{Name: "Memtester 512M", Argv: []string{"memtester", "512M", "1"}, Tool: "memtester"},
		{Name: "Memory Speed", Argv: []string{"sysbench", "memory", "--memory-block-size=1M", "--memory-total-size=512M", "run"}, Tool: "sysbench"},
		{Name: "Swap Usage", Argv: []string{"swapon", "--show"}, Tool: "swapon"},
		{Name: "CPU Info", Argv: []string{"lscpu"}, Tool: "lscpu"},
		{Name: "CPU Stress Test (20s)", Argv: []string{"stress-ng", "--cpu", "2", "--timeout", "20s"}, Tool: "stress-ng"},
		{Name: "Smart Status", Argv: []string{"smartctl", "-a", DevicePlaceholder}, Tool: "smartctl"},
		{Name: "Disk Speed", Argv: []string{"hdparm", "-tT", DevicePlaceholder}, Tool: "hdparm"},
		{Name: "Disk Usage", Argv: []string{"df", "-h"}, Tool: "df"},
		{Name: "Sensors", Argv: []string{"sensors"}, Tool: "sensors"},
		{Name: "Ping Test", Argv: []string{"ping", "-c", "2", "google.com"}, Tool: "ping"},
	}
}
