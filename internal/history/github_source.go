package history

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"
)

// GitHubSource is a HistorySource backed by the hosted GitHub API
// instead of a local clone. buildEngine hands it to ChronoMap when a
// repo root has no working tree of its own (e.g. genomectl is pointed
// at a remote by owner/name rather than a checkout).
//
// Grounded on the teacher's internal/github.Client: a rate-limited
// go-github wrapper around paginated list calls. Narrowed here to
// exactly what the Source interface needs: commits since a cutoff,
// each with its per-file addition/deletion counts. PR and issue
// linkage is not fetched.
type GitHubSource struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	owner, repo string
}

// NewGitHubSource builds a GitHubSource for owner/repo. token may be
// empty for unauthenticated access, at GitHub's much lower rate limit.
// rps bounds outbound request rate; 0 defaults to a conservative 1 qps.
func NewGitHubSource(token, owner, repo string, rps int) *GitHubSource {
	var client *github.Client
	if token != "" {
		client = github.NewClient(nil).WithAuthToken(token)
	} else {
		client = github.NewClient(nil)
	}
	if rps <= 0 {
		rps = 1
	}
	return &GitHubSource{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		owner:       owner,
		repo:        repo,
	}
}

// ParseOwnerRepo splits an "owner/name" slug, the form genomectl's
// --repo flag accepts when pointed at a GitHub source rather than a
// local path.
func ParseOwnerRepo(slug string) (owner, repo string, err error) {
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/repo, got %q", slug)
	}
	return parts[0], parts[1], nil
}

func (s *GitHubSource) CommitsSince(ctx context.Context, repoRoot string, days int) ([]Commit, error) {
	since := time.Now().AddDate(0, 0, -days)
	opts := &github.CommitsListOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var commits []Commit
	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("github rate limiter: %w", err)
		}

		page, resp, err := s.client.Repositories.ListCommits(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list commits for %s/%s: %w", s.owner, s.repo, err)
		}

		for _, rc := range page {
			c, err := s.commitWithFiles(ctx, rc.GetSHA())
			if err != nil {
				return nil, err
			}
			commits = append(commits, c)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

// commitWithFiles fetches the per-file stat breakdown for sha. The
// list endpoint above omits it; GetCommit returns it at the cost of
// one extra call per commit, acceptable at the small time windows
// ChronoMap actually queries (HistoryDays defaults to 365, not years).
func (s *GitHubSource) commitWithFiles(ctx context.Context, sha string) (Commit, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return Commit{}, fmt.Errorf("github rate limiter: %w", err)
	}

	rc, _, err := s.client.Repositories.GetCommit(ctx, s.owner, s.repo, sha, nil)
	if err != nil {
		return Commit{}, fmt.Errorf("get commit %s: %w", sha, err)
	}

	c := Commit{
		SHA:       rc.GetSHA(),
		Author:    rc.GetCommit().GetAuthor().GetName(),
		Email:     rc.GetCommit().GetAuthor().GetEmail(),
		Timestamp: rc.GetCommit().GetAuthor().GetDate().Time,
		Message:   rc.GetCommit().GetMessage(),
	}
	for _, f := range rc.Files {
		c.FilesChanged = append(c.FilesChanged, FileChange{
			Path:      f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return c, nil
}

// gitBinaryAvailable reports whether a local git checkout exists at
// root, the signal buildEngine uses to decide between GitSource and
// GitHubSource.
func gitBinaryAvailable(root string) bool {
	cmd := exec.Command("git", "-C", root, "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// GitBinaryAvailable is the exported form of gitBinaryAvailable.
func GitBinaryAvailable(root string) bool { return gitBinaryAvailable(root) }
