package releases

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/moeryomenko/detect-releases/internal/utils"
)

// DiffSource returns the unified diff text for a pull request
type DiffSource interface {
	Diff(prNumber string) (string, error)
}

// PRDiffSource obtains a PR diff from the version-control host CLI
type PRDiffSource struct {
	projectPath string
	command     []string
	logger      *utils.Logger
}

// NewPRDiffSource creates a diff source running command (e.g. "gh pr diff")
// with the PR number appended, from within projectPath
func NewPRDiffSource(projectPath string, command []string, logger *utils.Logger) *PRDiffSource {
	return &PRDiffSource{
		projectPath: projectPath,
		command:     command,
		logger:      logger,
	}
}

// Diff runs the diff command. Stderr of the command is passed through.
func (s *PRDiffSource) Diff(prNumber string) (string, error) {
	if len(s.command) == 0 {
		return "", errors.New("no diff command configured")
	}

	args := append(append([]string{}, s.command[1:]...), prNumber)
	cmd := exec.Command(s.command[0], args...)
	cmd.Dir = s.projectPath
	cmd.Stderr = os.Stderr

	s.logger.Info("Running %s %s in %s", s.command[0], strings.Join(args, " "), s.projectPath)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get PR diff: %w", err)
	}

	return string(output), nil
}
