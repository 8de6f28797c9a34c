package deploy

// Outcome is the result record for one targeted host. It is created by
// exactly one worker and never mutated after being reported.
type Outcome struct {
	Host       string
	Succeeded  bool
	Message    string
	BackupPath string // set only when the advisory backup succeeded
}

// Report aggregates one deployment invocation. Either ValidationErrors is
// non-empty (deployment never started), or DryRun holds a preview, or
// Outcomes carries exactly one entry per attempted host in completion
// order.
type Report struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int

	ValidationErrors []error

	DryRun       bool
	Preview      []byte
	PlannedHosts []string
}

func (r *Report) add(out Outcome) {
	r.Outcomes = append(r.Outcomes, out)
	if out.Succeeded {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// OK reports overall success: validation passed and zero failed hosts.
func (r *Report) OK() bool {
	return len(r.ValidationErrors) == 0 && r.Failed == 0
}
