package upgrade

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// StagerConfig holds background update settings.
type StagerConfig struct {
	Enabled       bool
	CheckInterval time.Duration
	RepoOwner     string
	RepoName      string
}

// githubRelease represents a GitHub API release response (only fields we need).
type githubRelease struct {
	TagName    string        `json:"tag_name"`
	Prerelease bool          `json:"prerelease"`
	Assets     []githubAsset `json:"assets"`
}

// githubAsset represents a release asset.
type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

const (
	githubAPIBase = "https://api.github.com"
	userAgent     = "vitalis-desktop-updater"
	checksumFile  = "checksums.txt"
)

// Stager periodically checks for a newer release and stages it next to
// the executable. The swap happens on the next launch.
type Stager struct {
	currentVersion string
	executable     string
	config         StagerConfig
	logger         *zap.Logger
	client         *retryablehttp.Client
	apiBase        string
	initialDelay   time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewStager creates a Stager for executable.
func NewStager(currentVersion, executable string, cfg StagerConfig, logger *zap.Logger) *Stager {
	logger = logger.Named("stager")
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 60 * time.Second
	client.Logger = leveledLogger{logger.Sugar()}

	return &Stager{
		currentVersion: currentVersion,
		executable:     executable,
		config:         cfg,
		logger:         logger,
		client:         client,
		apiBase:        githubAPIBase,
		initialDelay:   30 * time.Second,
		stopped:        make(chan struct{}),
	}
}

// Start begins the periodic check loop.
func (s *Stager) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info("Update staging is disabled")
		return
	}
	if s.currentVersion == "dev" {
		s.logger.Info("Running dev build, update staging disabled")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	s.logger.Info("Update staging started",
		zap.String("current_version", s.currentVersion),
		zap.Duration("check_interval", s.config.CheckInterval),
	)
}

// Stop stops the loop and waits for it to exit.
func (s *Stager) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.stopped
	}
}

func (s *Stager) loop(ctx context.Context) {
	defer close(s.stopped)

	// Let startup finish first.
	select {
	case <-time.After(s.initialDelay):
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	s.checkAndStage(ctx)
	for {
		select {
		case <-ticker.C:
			s.checkAndStage(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// checkAndStage stages the latest release if it is newer. It reports
// whether a binary was staged.
func (s *Stager) checkAndStage(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Checking for updates")

	release, err := s.fetchLatestRelease(ctx)
	if err != nil {
		s.logger.Warn("Failed to check for updates", zap.Error(err))
		return false
	}

	if release.Prerelease || !isNewer(release.TagName, s.currentVersion) {
		s.logger.Debug("Already up to date",
			zap.String("current", s.currentVersion),
			zap.String("latest", release.TagName),
		)
		return false
	}

	s.logger.Info("New version available",
		zap.String("current", s.currentVersion),
		zap.String("latest", release.TagName),
	)

	if err := s.stage(ctx, release); err != nil {
		s.logger.Error("Staging update failed", zap.Error(err))
		return false
	}
	return true
}

func (s *Stager) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp, nil
}

func (s *Stager) fetchLatestRelease(ctx context.Context) (*githubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", s.apiBase, s.config.RepoOwner, s.config.RepoName)
	resp, err := s.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer resp.Body.Close()

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &release, nil
}

func (s *Stager) stage(ctx context.Context, release *githubRelease) error {
	binaryName := binaryNameForPlatform(runtime.GOOS, runtime.GOARCH)

	var binaryURL, checksumsURL string
	for _, asset := range release.Assets {
		switch asset.Name {
		case binaryName:
			binaryURL = asset.BrowserDownloadURL
		case checksumFile:
			checksumsURL = asset.BrowserDownloadURL
		}
	}
	if binaryURL == "" {
		return fmt.Errorf("no binary found for %s/%s in release %s", runtime.GOOS, runtime.GOARCH, release.TagName)
	}
	if checksumsURL == "" {
		return fmt.Errorf("no checksums file found in release %s", release.TagName)
	}

	expected, err := s.fetchExpectedChecksum(ctx, checksumsURL, binaryName)
	if err != nil {
		return fmt.Errorf("fetch checksums: %w", err)
	}

	// Download next to the executable so the final rename stays on one filesystem.
	tmpFile := filepath.Join(filepath.Dir(s.executable), fmt.Sprintf(".vitalis-update-%d", time.Now().UnixNano()))
	s.logger.Info("Downloading update",
		zap.String("version", release.TagName),
		zap.String("url", binaryURL),
	)
	if err := s.downloadFile(ctx, binaryURL, tmpFile); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("download binary: %w", err)
	}

	actual, err := fileChecksum(tmpFile)
	if err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("compute checksum: %w", err)
	}
	if actual != expected {
		os.Remove(tmpFile)
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	s.logger.Info("Checksum verified", zap.String("sha256", actual))

	if err := os.Chmod(tmpFile, 0755); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("chmod staged binary: %w", err)
	}
	staged := StagedPath(s.executable)
	if err := os.Rename(tmpFile, staged); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("stage binary: %w", err)
	}
	s.logger.Info("Update staged for next launch",
		zap.String("version", release.TagName),
		zap.String("path", staged),
	)
	return nil
}

func (s *Stager) fetchExpectedChecksum(ctx context.Context, checksumsURL, binaryName string) (string, error) {
	resp, err := s.get(ctx, checksumsURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// sha256sum format: "<hash>  <filename>".
	for _, line := range strings.Split(string(body), "\n") {
		parts := strings.Fields(line)
		if len(parts) == 2 && parts[1] == binaryName {
			return parts[0], nil
		}
	}
	return "", fmt.Errorf("checksum not found for %s", binaryName)
}

func (s *Stager) downloadFile(ctx context.Context, url, destPath string) error {
	resp, err := s.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// fileChecksum computes the SHA-256 checksum of a file.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// leveledLogger routes retryablehttp logs to zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
