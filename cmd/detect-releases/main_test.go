package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeryomenko/detect-releases/internal/models"
)

// newFixtureRepo commits packages/foo at 1.0.0 and then at 1.1.0, with an
// unrelated packages/bar change in the second commit.
func newFixtureRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	commit := func(msg string) {
		_, err := wt.Add("packages")
		require.NoError(t, err)
		_, err = wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}

	write("packages/foo/package.json", "{\n  \"name\": \"@acme/foo\",\n  \"version\": \"1.0.0\"\n}\n")
	write("packages/bar/index.js", "module.exports = 1\n")
	commit("initial")

	write("packages/foo/package.json", "{\n  \"name\": \"@acme/foo\",\n  \"version\": \"1.1.0\"\n}\n")
	write("packages/foo/CHANGELOG.md", "## 1.1.0 (2024-01-01)\n- Fixed bug\n\n## 1.0.0\n- Initial\n")
	write("packages/foo/RELEASES.md", "## 1.1.0\n- From releases file\n")
	write("packages/bar/index.js", "module.exports = 2\n")
	commit("release foo 1.1.0")

	return root
}

func TestRun_MissingPRNumber(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{}, &stdout, &stderr)

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Usage: detect-releases <pr-number>")
}

func TestRun_ArgumentErrors(t *testing.T) {
	tests := map[string]struct {
		args   []string
		errMsg string
	}{
		"head without base": {
			args:   []string{"12", "--head", "HEAD"},
			errMsg: "--head requires --base",
		},
		"too many arguments": {
			args:   []string{"12", "13"},
			errMsg: "accepts at most 1 arg(s)",
		},
		"unknown flag": {
			args:   []string{"12", "--nope"},
			errMsg: "unknown flag: --nope",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, ExitFailure, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), tt.errMsg)
		})
	}
}

func TestRun_DiffCommandFailure(t *testing.T) {
	root := newFixtureRepo(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"7", "--root", root, "--diff-command", "detect-releases-no-such-binary pr diff"}, &stdout, &stderr)

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "failed to get PR diff")
}

func TestRun_LocalRevisions(t *testing.T) {
	root := newFixtureRepo(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--root", root, "--base", "HEAD~1"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var got []models.Release
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []models.Release{
		{Name: "@acme/foo", Version: "1.1.0", Changelog: "- Fixed bug"},
	}, got)
	assert.Contains(t, stdout.String(), "\n  {\n    \"name\"")
}

func TestRun_NoReleases(t *testing.T) {
	root := newFixtureRepo(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--root", root, "--base", "HEAD", "--head", "HEAD"}, &stdout, &stderr)

	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Equal(t, "[]\n", stdout.String())
}

func TestRun_ConfigFile(t *testing.T) {
	root := newFixtureRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".detect-releases.yml"), []byte("changelog_file: RELEASES.md\n"), 0o644))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--root", root, "--base", "HEAD~1"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var got []models.Release
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "- From releases file", got[0].Changelog)
}

func TestRun_MissingChangelogIsNotFatal(t *testing.T) {
	root := newFixtureRepo(t)
	require.NoError(t, os.Remove(filepath.Join(root, "packages", "foo", "CHANGELOG.md")))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--root", root, "--base", "HEAD~1"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	var got []models.Release
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []models.Release{{Name: "@acme/foo", Version: "1.1.0", Changelog: ""}}, got)
	assert.Contains(t, stderr.String(), "Could not read changelog for @acme/foo")
}
