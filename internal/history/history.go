// Package history parses the per-job execution log and aggregates
// success statistics for the report command.
//
// Record format, one per line:
//
//	2026-02-12 10:30:00|backup-db|SUCCESS|0|120s
package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Execution is one parsed log record.
type Execution struct {
	Time     time.Time
	Job      string
	Status   string
	ExitCode int
	Duration time.Duration
}

func (e Execution) Succeeded() bool { return e.Status == "SUCCESS" }

// ParseLog reads records newer than since. Malformed lines are skipped,
// not fatal: the log is appended to by many jobs and partial lines happen.
func ParseLog(r io.Reader, since time.Time) ([]Execution, error) {
	var execs []Execution

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 5 {
			continue
		}

		ts, err := time.Parse(timeLayout, parts[0])
		if err != nil || ts.Before(since) {
			continue
		}
		exitCode, err := strconv.Atoi(parts[3])
		if err != nil {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimSuffix(parts[4], "s"))
		if err != nil {
			continue
		}

		execs = append(execs, Execution{
			Time:     ts,
			Job:      parts[1],
			Status:   parts[2],
			ExitCode: exitCode,
			Duration: time.Duration(secs) * time.Second,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return execs, nil
}

// ParseLogFile reads the executions of the last `window` from path,
// relative to now.
func ParseLogFile(path string, window time.Duration, now time.Time) ([]Execution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return ParseLog(f, now.Add(-window))
}

// JobStats aggregates the executions of one job.
type JobStats struct {
	Job         string
	Runs        int
	Failures    int
	AvgDuration time.Duration
}

// SuccessRate is in [0, 1].
func (s JobStats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Runs-s.Failures) / float64(s.Runs)
}

// Aggregate groups executions per job, sorted by job name.
func Aggregate(execs []Execution) []JobStats {
	byJob := make(map[string]*JobStats)
	totals := make(map[string]time.Duration)

	for _, e := range execs {
		s := byJob[e.Job]
		if s == nil {
			s = &JobStats{Job: e.Job}
			byJob[e.Job] = s
		}
		s.Runs++
		if !e.Succeeded() {
			s.Failures++
		}
		totals[e.Job] += e.Duration
	}

	stats := make([]JobStats, 0, len(byJob))
	for job, s := range byJob {
		s.AvgDuration = totals[job] / time.Duration(s.Runs)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Job < stats[j].Job })
	return stats
}

// Failures returns the failed executions, most recent first.
func Failures(execs []Execution) []Execution {
	var failed []Execution
	for _, e := range execs {
		if !e.Succeeded() {
			failed = append(failed, e)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Time.After(failed[j].Time) })
	return failed
}
