// Package render serializes an Environment into crontab text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/tastythames/cronfleet/internal/config"
)

const timeLayout = "2006-01-02 15:04:05"

// Options control one render pass. The clock comes in via Now so that the
// same Environment and Options always produce byte-identical output;
// callers diffing two renders hold Now constant.
type Options struct {
	// User, when non-empty, emits only jobs whose target user matches.
	User string
	// Now is the timestamp stamped into the provenance header.
	Now time.Time
	// Source overrides the config-file path in the header; defaults to
	// the environment's source path.
	Source string
}

// Crontab renders the environment: provenance header, env-var block in
// document order, then one block per enabled job in definition order.
func Crontab(env *config.Environment, opts Options) []byte {
	source := opts.Source
	if source == "" {
		source = env.Source
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated by cronfleet\n")
	fmt.Fprintf(&b, "# Generated at: %s\n", opts.Now.Format(timeLayout))
	fmt.Fprintf(&b, "# Config file: %s\n", source)
	b.WriteString("\n")

	if len(env.Env) > 0 {
		for _, kv := range env.Env {
			fmt.Fprintf(&b, "%s=%s\n", kv.Key, kv.Value)
		}
		b.WriteString("\n")
	}

	for _, job := range env.EnabledJobs() {
		if opts.User != "" && job.User != opts.User {
			continue
		}

		fmt.Fprintf(&b, "# %s\n", job.Name)
		if job.Description != "" {
			fmt.Fprintf(&b, "# %s\n", job.Description)
		}
		fmt.Fprintf(&b, "%s %s\n", job.Schedule, commandLine(job))
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// commandLine appends the configured log redirections to the command.
// stdout-only redirection also merges stderr into it.
func commandLine(job config.JobSpec) string {
	cmd := job.Command
	if job.LogStdout != "" {
		cmd += " >> " + job.LogStdout
	}
	if job.LogStderr != "" {
		cmd += " 2>> " + job.LogStderr
	} else if job.LogStdout != "" {
		cmd += " 2>&1"
	}
	return cmd
}
