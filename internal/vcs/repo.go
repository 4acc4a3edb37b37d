package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/quill/internal/dispatch"
)

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// gitRunner executes a git subcommand and returns its stdout. Swappable in
// tests.
type gitRunner func(ctx context.Context, dir string, args ...string) (string, error)

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}

// Repo reports status for one repository.
//
// Thread-safety: Refresh may be called from any goroutine; results always
// arrive on the drain-loop goroutine.
type Repo struct {
	dir     string
	queue   *dispatch.Queue
	run     gitRunner
	timeout time.Duration
}

// RepoOption configures a Repo.
type RepoOption func(*Repo)

// WithGitTimeout bounds each git invocation.
func WithGitTimeout(d time.Duration) RepoOption {
	return func(r *Repo) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// withGitRunner substitutes the git executor in tests.
func withGitRunner(run gitRunner) RepoOption {
	return func(r *Repo) {
		r.run = run
	}
}

// Open locates the repository containing dir. Returns ErrNotRepository if
// dir is not inside a work tree.
func Open(ctx context.Context, dir string, queue *dispatch.Queue, opts ...RepoOption) (*Repo, error) {
	r := &Repo{
		dir:     dir,
		queue:   queue,
		run:     runGit,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	root, err := r.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotRepository
	}
	r.dir = strings.TrimSpace(root)
	return r, nil
}

// Dir returns the repository root.
func (r *Repo) Dir() string {
	return r.dir
}

// GitDir returns the path to the repository's .git directory.
func (r *Repo) GitDir() string {
	return filepath.Join(r.dir, ".git")
}

// Status runs git status synchronously. Callers off the UI goroutine only.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.run(ctx, r.dir, "status", "--porcelain=v2", "--branch", "--untracked-files=all")
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(out)
}

// Refresh fetches status on a background goroutine and enqueues onStatus
// with the result. Failures are enqueued to onErr when non-nil, otherwise
// dropped.
func (r *Repo) Refresh(onStatus func(Status), onErr func(error)) {
	go func() {
		status, err := r.Status(context.Background())
		if err != nil {
			if onErr != nil {
				r.queue.PushAction(func() { onErr(err) })
			}
			return
		}
		r.queue.PushAction(func() { onStatus(status) })
	}()
}
