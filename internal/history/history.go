// Package history implements the HistorySource capability ChronoMap
// consumes: per-file commit counts, recency, churn, and co-change
// partners, backed by shelling out to the locally installed `git`
// binary (or, via GitHubSource, the hosted GitHub API).
//
// Grounded on the teacher's internal/temporal/git_history.go
// (ParseGitHistory's `git log --numstat` invocation and output
// scanner), generalized from a full Commit/Developer/Ownership model
// down to exactly what ChronoMap's contract requires: a churn score
// and a last-major-change timestamp per path. CoChange is grounded on
// internal/temporal/co_change.go's pair-counting approach, which the
// teacher itself had marked deprecated in favor of a Neo4j query —
// adapted back to an in-memory computation since the Genome has no
// graph database to query.
package history

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileChange is one file touched by one commit.
type FileChange struct {
	Path      string
	Additions int
	Deletions int
}

// Commit is one parsed git log entry.
type Commit struct {
	SHA          string
	Author       string
	Email        string
	Timestamp    time.Time
	Message      string
	FilesChanged []FileChange
}

// Source is the capability ChronoMap depends on. A VCS-agnostic
// interface so a non-git HistorySource (e.g. a synthetic one in
// tests) can stand in without changing ChronoMap.
type Source interface {
	// CommitsSince returns every commit touching repoRoot within the
	// last `days` days. GitSource and GitHubSource return them newest
	// first, in the order git log and the GitHub API list them.
	CommitsSince(ctx context.Context, repoRoot string, days int) ([]Commit, error)
}

// GitSource is the default Source, backed by the `git` binary.
type GitSource struct{}

// NewGitSource returns the default git-shell-out HistorySource.
func NewGitSource() *GitSource { return &GitSource{} }

func (g *GitSource) CommitsSince(ctx context.Context, repoRoot string, days int) ([]Commit, error) {
	cmd := exec.CommandContext(ctx, "git", "log",
		fmt.Sprintf("--since=%d days ago", days),
		"--numstat",
		"--pretty=format:%H|%an|%ae|%ad|%s",
		"--date=iso-strict")
	cmd.Dir = repoRoot

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w (output: %s)", err, string(output))
	}
	return parseGitLogOutput(string(output))
}

func parseGitLogOutput(output string) ([]Commit, error) {
	var commits []Commit
	var current *Commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			flush()
			continue
		}

		if strings.Contains(line, "|") && looksLikeHeader(line) {
			flush()
			parts := strings.SplitN(line, "|", 5)
			if len(parts) != 5 {
				continue
			}
			ts, err := time.Parse(time.RFC3339, parts[3])
			if err != nil {
				ts = time.Now()
			}
			current = &Commit{SHA: parts[0], Author: parts[1], Email: parts[2], Timestamp: ts, Message: parts[4]}
			continue
		}

		if current != nil {
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				if fields[0] == "-" || fields[1] == "-" {
					continue
				}
				additions, _ := strconv.Atoi(fields[0])
				deletions, _ := strconv.Atoi(fields[1])
				current.FilesChanged = append(current.FilesChanged, FileChange{
					Path: fields[2], Additions: additions, Deletions: deletions,
				})
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}
	return commits, nil
}

// looksLikeHeader distinguishes a "SHA|author|email|date|msg" header
// line from a numstat line, which never contains '|'.
func looksLikeHeader(line string) bool {
	return strings.Count(line, "|") >= 4
}

// ChurnEntry summarizes one file's recent change activity.
type ChurnEntry struct {
	Path            string
	ChangeCount     int
	LastMajorChange time.Time
}

// Churn aggregates commits into a per-file change count and most
// recent timestamp, the raw material ChronoMap normalizes into
// genome.HistoryEntry.ChurnScore.
func Churn(commits []Commit) map[string]ChurnEntry {
	out := make(map[string]ChurnEntry)
	for _, c := range commits {
		for _, fc := range c.FilesChanged {
			e := out[fc.Path]
			e.Path = fc.Path
			e.ChangeCount++
			if c.Timestamp.After(e.LastMajorChange) {
				e.LastMajorChange = c.Timestamp
			}
			out[fc.Path] = e
		}
	}
	return out
}

// NormalizeChurn maps raw change counts into [0,1] via a log-scaled
// ratio against the single busiest file, so one outlier file doesn't
// flatten every other score to near zero.
func NormalizeChurn(churn map[string]ChurnEntry) map[string]float64 {
	if len(churn) == 0 {
		return nil
	}
	maxCount := 0
	for _, e := range churn {
		if e.ChangeCount > maxCount {
			maxCount = e.ChangeCount
		}
	}
	if maxCount == 0 {
		return nil
	}
	logMax := math.Log1p(float64(maxCount))

	out := make(map[string]float64, len(churn))
	for path, e := range churn {
		if logMax == 0 {
			out[path] = 0
			continue
		}
		out[path] = math.Log1p(float64(e.ChangeCount)) / logMax
	}
	return out
}

// SortedPaths returns churn's keys sorted for deterministic iteration.
func SortedPaths(churn map[string]ChurnEntry) []string {
	paths := make([]string, 0, len(churn))
	for p := range churn {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// CoChangePartner is one file that tends to change alongside another.
type CoChangePartner struct {
	Path      string
	Frequency float64 // co-changes / max(either file's own change count)
}

// CoChange finds, for every file touched by commits, the other files
// most often touched in the same commit. Grounded on the teacher's
// internal/temporal/co_change.go pair-counting approach, kept in
// memory against the already-fetched commit window rather than a
// graph query, and limited to top-n partners per file.
func CoChange(commits []Commit, minFrequency float64, topN int) map[string][]CoChangePartner {
	fileCounts := make(map[string]int)
	pairCounts := make(map[[2]string]int)

	for _, c := range commits {
		paths := make([]string, 0, len(c.FilesChanged))
		for _, fc := range c.FilesChanged {
			fileCounts[fc.Path]++
			paths = append(paths, fc.Path)
		}
		sort.Strings(paths)
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				pairCounts[[2]string{paths[i], paths[j]}]++
			}
		}
	}

	byFile := make(map[string][]CoChangePartner)
	for pair, count := range pairCounts {
		a, b := pair[0], pair[1]
		maxCount := fileCounts[a]
		if fileCounts[b] > maxCount {
			maxCount = fileCounts[b]
		}
		if maxCount == 0 {
			continue
		}
		freq := float64(count) / float64(maxCount)
		if freq < minFrequency {
			continue
		}
		byFile[a] = append(byFile[a], CoChangePartner{Path: b, Frequency: freq})
		byFile[b] = append(byFile[b], CoChangePartner{Path: a, Frequency: freq})
	}

	for path, partners := range byFile {
		sort.Slice(partners, func(i, j int) bool {
			if partners[i].Frequency != partners[j].Frequency {
				return partners[i].Frequency > partners[j].Frequency
			}
			return partners[i].Path < partners[j].Path
		})
		if topN > 0 && len(partners) > topN {
			partners = partners[:topN]
		}
		byFile[path] = partners
	}
	return byFile
}
