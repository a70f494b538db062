package seeder

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadPlan reads a TOML plan file. Unknown keys are rejected so typos do not
// silently drop data.
func LoadPlan(path string) (Plan, error) {
	var p Plan
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Plan{}, fmt.Errorf("decode plan %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Plan{}, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidPlan, path, strings.Join(keys, ", "))
	}
	if err := p.Validate(); err != nil {
		return Plan{}, fmt.Errorf("plan %s: %w", path, err)
	}
	return p, nil
}
