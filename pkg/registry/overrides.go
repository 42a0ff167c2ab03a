package registry

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// overridesFile is the TOML shape of a user test catalog:
//
//	[[tests]]
//	name = "Kernel Ring Buffer"
//	argv = ["dmesg", "--level=err,warn"]
//	tool = "dmesg"
type overridesFile struct {
	Tests []overrideSpec `toml:"tests"`
}

type overrideSpec struct {
	Name string   `toml:"name"`
	Argv []string `toml:"argv"`
	Tool string   `toml:"tool"`
}

// LoadOverrides reads user-defined tests from a TOML file. A missing file is
// not an error and yields no specs. Entries whose name matches a builtin
// replace it; new names are appended to the menu.
func LoadOverrides(path string) ([]TestSpec, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from resolved MOMO_HOME
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read test overrides %s: %w", path, err)
	}

	var file overridesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse test overrides %s: %w", path, err)
	}

	specs := make([]TestSpec, 0, len(file.Tests))
	for i, o := range file.Tests {
		if o.Name == "" || len(o.Argv) == 0 {
			return nil, fmt.Errorf("test overrides %s: entry %d needs name and argv", path, i)
		}
		tool := o.Tool
		if tool == "" {
			tool = o.Argv[0]
		}
		specs = append(specs, TestSpec{Name: o.Name, Argv: o.Argv, Tool: tool})
	}
	return specs, nil
}
