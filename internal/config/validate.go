package config

import (
	"fmt"

	"github.com/tastythames/cronfleet/internal/cronspec"
)

// Validate checks the whole environment at the boundary and collects every
// problem instead of stopping at the first one. A non-empty result means
// the environment must not be deployed, even partially.
func (e *Environment) Validate() []error {
	var errs []error

	if len(e.Servers) == 0 {
		errs = append(errs, fmt.Errorf("missing 'servers' section"))
	}
	if len(e.Jobs) == 0 {
		errs = append(errs, fmt.Errorf("missing 'jobs' section"))
	}
	if len(errs) > 0 {
		return errs
	}

	for i, g := range e.Servers {
		if g.Group == "" {
			errs = append(errs, fmt.Errorf("server group %d: missing 'group' field", i))
		}
		if len(g.Hosts) == 0 {
			errs = append(errs, fmt.Errorf("server group %q: hosts list is empty", groupLabel(g, i)))
		}
	}

	names := make(map[string]bool)
	for i, j := range e.Jobs {
		label := fmt.Sprintf("job %d", i)
		if j.Name == "" {
			errs = append(errs, fmt.Errorf("%s: missing 'name' field", label))
		} else {
			if names[j.Name] {
				errs = append(errs, fmt.Errorf("duplicate job name: %s", j.Name))
			}
			names[j.Name] = true
			label = fmt.Sprintf("job %q", j.Name)
		}

		if j.Schedule == "" {
			errs = append(errs, fmt.Errorf("%s: missing 'schedule' field", label))
		} else if err := cronspec.ValidateSchedule(j.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid schedule: %w", label, err))
		}

		if j.Command == "" {
			errs = append(errs, fmt.Errorf("%s: missing 'command' field", label))
		} else if err := cronspec.ValidateCommand(j.Command); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
	}

	return errs
}

func groupLabel(g HostGroup, i int) string {
	if g.Group != "" {
		return g.Group
	}
	return fmt.Sprintf("#%d", i)
}
