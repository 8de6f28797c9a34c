package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
environment:
  PATH: /usr/local/bin:/usr/bin:/bin
  MAILTO: ops@example.com
  SHELL: /bin/bash

servers:
  - group: web
    hosts:
      - web-01
      - web-02
  - group: db
    hosts:
      - db-01
      - web-01

jobs:
  - name: backup-db
    schedule: "0 2 * * *"
    command: /opt/scripts/backup.sh
    user: postgres
    description: nightly dump
    log_stdout: /var/log/cron-jobs/backup.log

  - name: cleanup-tmp
    schedule: "*/30 * * * *"
    command: find /tmp -mtime +1 -delete
    enabled: false
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	env, err := Load(writeConfig(t, "prod.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "prod", env.Name)
	require.Len(t, env.Jobs, 2)

	// defaults normalized
	assert.Equal(t, "postgres", env.Jobs[0].User)
	assert.Equal(t, "root", env.Jobs[1].User)
	assert.True(t, env.Jobs[0].IsEnabled())
	assert.False(t, env.Jobs[1].IsEnabled())

	// env block keeps document order
	require.Len(t, env.Env, 3)
	assert.Equal(t, EnvVar{"PATH", "/usr/local/bin:/usr/bin:/bin"}, env.Env[0])
	assert.Equal(t, EnvVar{"MAILTO", "ops@example.com"}, env.Env[1])
	assert.Equal(t, EnvVar{"SHELL", "/bin/bash"}, env.Env[2])
}

func TestLoadMissingOrEmpty(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "empty.yaml", "# nothing here\n"))
	assert.Error(t, err)
}

func TestHostsFlattenAndDedupe(t *testing.T) {
	env, err := Load(writeConfig(t, "prod.yaml", sampleYAML))
	require.NoError(t, err)

	// web-01 appears in both groups; flattened list keeps the first.
	assert.Equal(t, []string{"web-01", "web-02", "db-01"}, env.Hosts(""))
	assert.Equal(t, []string{"db-01", "web-01"}, env.Hosts("db"))
	assert.Empty(t, env.Hosts("missing"))
}

func TestEnabledJobs(t *testing.T) {
	env, err := Load(writeConfig(t, "prod.yaml", sampleYAML))
	require.NoError(t, err)

	jobs := env.EnabledJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "backup-db", jobs[0].Name)
}

func TestValidateOK(t *testing.T) {
	env, err := Load(writeConfig(t, "prod.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Empty(t, env.Validate())
}

func TestValidateCollectsErrors(t *testing.T) {
	env := &Environment{
		Servers: []HostGroup{
			{Group: "web"}, // empty hosts
			{Hosts: []string{"a"}},
		},
		Jobs: []JobSpec{
			{Name: "dup", Schedule: "0 2 * * *", Command: "echo one"},
			{Name: "dup", Schedule: "60 * * * *", Command: "echo two"},
			{Name: "bad-cmd", Schedule: "* * * * *", Command: "rm -rf /"},
			{Schedule: "* * * *"},
		},
	}

	errs := env.Validate()
	require.NotEmpty(t, errs)

	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	joined := ""
	for _, m := range msgs {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "hosts list is empty")
	assert.Contains(t, joined, "missing 'group' field")
	assert.Contains(t, joined, "duplicate job name: dup")
	assert.Contains(t, joined, "invalid schedule")
	assert.Contains(t, joined, "destructive pattern")
	assert.Contains(t, joined, "missing 'name' field")
	assert.Contains(t, joined, "missing 'command' field")
}

func TestValidateMissingSections(t *testing.T) {
	env := &Environment{}
	errs := env.Validate()
	require.Len(t, errs, 2)
}

func TestListEnvs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"staging.yaml", "prod.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("jobs: []\n"), 0o644))
	}
	names, err := ListEnvs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "staging"}, names)
}
