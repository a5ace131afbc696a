package releases

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/moeryomenko/detect-releases/internal/utils"
)

// RefDiffSource computes the diff between two local revisions with go-git.
// It stands in for the host CLI when checking a branch before a PR exists.
type RefDiffSource struct {
	projectPath string
	base        string
	head        string
	logger      *utils.Logger
}

// NewRefDiffSource creates a diff source for base..head in the repository at projectPath
func NewRefDiffSource(projectPath, base, head string, logger *utils.Logger) *RefDiffSource {
	if head == "" {
		head = "HEAD"
	}
	return &RefDiffSource{
		projectPath: projectPath,
		base:        base,
		head:        head,
		logger:      logger,
	}
}

// Diff ignores the PR number and returns the patch between base and head
func (s *RefDiffSource) Diff(_ string) (string, error) {
	repo, err := git.PlainOpenWithOptions(s.projectPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", s.projectPath, err)
	}

	from, err := s.commitFor(repo, s.base)
	if err != nil {
		return "", err
	}
	to, err := s.commitFor(repo, s.head)
	if err != nil {
		return "", err
	}

	s.logger.Info("Computing diff %s..%s (%s..%s)", s.base, s.head, from.Hash, to.Hash)

	patch, err := from.Patch(to)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s..%s: %w", s.base, s.head, err)
	}

	return patch.String(), nil
}

// commitFor resolves a revision (branch, tag, hash, HEAD~n) to its commit
func (s *RefDiffSource) commitFor(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("could not resolve revision %s: %w", rev, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", rev, err)
	}
	return commit, nil
}

// FindProjectRoot returns the work tree root of the git repository containing dir.
// Outside a repository dir itself is returned.
func FindProjectRoot(dir string, logger *utils.Logger) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		logger.Info("No git repository found at %s, using it as project root", dir)
		return dir, nil
	}
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	logger.Info("Project root: %s", root)
	return root, nil
}
