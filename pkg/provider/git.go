package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"routedesk-hq/routedesk/pkg/config"
)

const (
	commitAuthorName  = "RouteDesk"
	commitAuthorEmail = "bot@routedesk.dev"
)

// GitProvider implements Provider against a Git repository. It keeps a
// local mirror of the repository and pushes review branches for every
// accepted change; the hosting service turns pushed review branches
// into pull requests.
type GitProvider struct {
	cfg       config.ProviderConfig
	localPath string
	auth      AuthProvider
	repo      *gogit.Repository
	mu        sync.Mutex
	logger    *slog.Logger
}

// NewGitProvider creates a Git-backed provider. The repository is not
// cloned until Init or the first operation that needs it.
func NewGitProvider(cfg config.ProviderConfig, logger *slog.Logger) (*GitProvider, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.BaseBranch == "" {
		return nil, fmt.Errorf("base branch cannot be empty")
	}

	auth, err := NewAuthProvider(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "routedesk-repo")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GitProvider{
		cfg:       cfg,
		localPath: localPath,
		auth:      auth,
		logger:    logger.With("component", "provider.git"),
	}, nil
}

// Init clones the repository, or opens an existing local mirror.
func (p *GitProvider) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureOpen(ctx)
}

// ensureOpen clones or opens the repository. Callers must hold p.mu.
func (p *GitProvider) ensureOpen(ctx context.Context) error {
	if p.repo != nil {
		return nil
	}

	gitDir := filepath.Join(p.localPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(p.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		p.repo = repo
		return nil
	}

	if err := os.MkdirAll(p.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := p.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	cloneCtx, cancel := p.opContext(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, p.localPath, false, &gogit.CloneOptions{
		URL:           p.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(p.cfg.BaseBranch),
		Auth:          auth,
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, p.cfg.BaseBranch)
		}
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	p.logger.Info("repository cloned",
		"repository", p.cfg.Repository,
		"branch", p.cfg.BaseBranch,
		"local_path", p.localPath,
	)

	p.repo = repo
	return nil
}

// opContext bounds a single remote operation.
func (p *GitProvider) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.cfg.OperationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// CheckHealth implements Provider. It lists the remote's references,
// which exercises connectivity and authentication without moving the
// local mirror.
func (p *GitProvider) CheckHealth(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureOpen(ctx); err != nil {
		p.logger.Warn("health check failed to open repository", "error", err)
		return false
	}

	remote, err := p.repo.Remote("origin")
	if err != nil {
		p.logger.Warn("health check failed to resolve remote", "error", err)
		return false
	}

	auth, err := p.auth.GetAuth()
	if err != nil {
		p.logger.Warn("health check failed to get auth", "error", err)
		return false
	}

	listCtx, cancel := p.opContext(ctx)
	defer cancel()

	if _, err := remote.ListContext(listCtx, &gogit.ListOptions{Auth: auth}); err != nil {
		p.logger.Warn("health check failed to list remote", "error", err)
		return false
	}
	return true
}

// GetConfigs implements Provider. It refreshes the base branch and
// reads the two fragments from the working tree.
func (p *GitProvider) GetConfigs(ctx context.Context, environment, team string) (ConfigPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureOpen(ctx); err != nil {
		return ConfigPair{}, err
	}
	if err := p.refreshBase(ctx); err != nil {
		return ConfigPair{}, err
	}

	upstreams, err := p.readFragment(upstreamPath(p.cfg.ConfigRoot, environment, team))
	if err != nil {
		return ConfigPair{}, err
	}
	locations, err := p.readFragment(locationsPath(p.cfg.ConfigRoot, environment, team))
	if err != nil {
		return ConfigPair{}, err
	}

	return ConfigPair{Upstreams: upstreams, Locations: locations}, nil
}

// readFragment reads a repository-relative file. A missing file is an
// empty fragment, not an error.
func (p *GitProvider) readFragment(relPath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(p.localPath, filepath.FromSlash(relPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return string(content), nil
}

// refreshBase checks out the base branch and pulls it. Callers must
// hold p.mu.
func (p *GitProvider) refreshBase(ctx context.Context) error {
	worktree, err := p.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(p.cfg.BaseBranch),
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, p.cfg.BaseBranch)
		}
		return fmt.Errorf("failed to checkout %s: %w", p.cfg.BaseBranch, err)
	}

	auth, err := p.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := p.opContext(ctx)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(p.cfg.BaseBranch),
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull %s: %w", p.cfg.BaseBranch, err)
	}
	return nil
}

// CreatePR implements Provider. It cuts a review branch from the
// refreshed base, writes the two fragments, commits, and pushes. The
// returned identifier is the review branch name.
func (p *GitProvider) CreatePR(ctx context.Context, environment, team, upstreams, locations string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureOpen(ctx); err != nil {
		return "", err
	}
	if err := p.refreshBase(ctx); err != nil {
		return "", err
	}

	worktree, err := p.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	branch := fmt.Sprintf("routedesk/%s-%s-%d", team, environment, time.Now().UTC().UnixMilli())
	err = worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	// Whatever happens next, leave the mirror on the base branch.
	defer func() {
		checkoutErr := worktree.Checkout(&gogit.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(p.cfg.BaseBranch),
		})
		if checkoutErr != nil {
			p.logger.Warn("failed to restore base branch", "error", checkoutErr)
		}
	}()

	files := map[string]string{
		upstreamPath(p.cfg.ConfigRoot, environment, team):  upstreams,
		locationsPath(p.cfg.ConfigRoot, environment, team): locations,
	}
	for relPath, content := range files {
		absPath := filepath.Join(p.localPath, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(relPath), err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", relPath, err)
		}
		if _, err := worktree.Add(relPath); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", relPath, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return "", ErrNoChanges
	}

	message := fmt.Sprintf("Update %s routing for %s", environment, team)
	_, err = worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	auth, err := p.auth.GetAuth()
	if err != nil {
		return "", fmt.Errorf("failed to get auth: %w", err)
	}

	pushCtx, cancel := p.opContext(ctx)
	defer cancel()

	refSpec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = p.repo.PushContext(pushCtx, &gogit.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitcfg.RefSpec{refSpec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("failed to push branch %s: %w", branch, err)
	}

	p.logger.Info("review branch pushed",
		"branch", branch,
		"team", team,
		"environment", environment,
	)

	return branch, nil
}
