package tlsconfig

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Provider serves a certificate that can be swapped at runtime.
type Provider struct {
	cert     atomic.Pointer[tls.Certificate]
	files    Files
	logger   *slog.Logger
	debounce time.Duration
	stop     chan struct{}
	closeMu  sync.Once
	watching atomic.Bool
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used by Watch.
func WithLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDebounce sets how long Watch waits after the last file event before
// reloading.
func WithDebounce(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// NewProvider loads the key pair once. A failure here is a startup error.
func NewProvider(files Files, opts ...ProviderOption) (*Provider, error) {
	cert, err := Load(files)
	if err != nil {
		return nil, err
	}
	p := &Provider{
		files:    files,
		logger:   slog.New(slog.DiscardHandler),
		debounce: defaultDebounce,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cert.Store(cert)
	return p, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (p *Provider) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return p.cert.Load(), nil
}

// Certificate returns the certificate currently served.
func (p *Provider) Certificate() *tls.Certificate {
	return p.cert.Load()
}

// Reload re-reads the key pair. On failure the previous certificate stays
// in place.
func (p *Provider) Reload() error {
	cert, err := Load(p.files)
	if err != nil {
		return err
	}
	p.cert.Store(cert)
	return nil
}

// Watch reloads the key pair whenever one of its files is written,
// recreated, renamed or removed, including Kubernetes "..data" symlink swaps. It blocks until ctx is done or Close is called.
func (p *Provider) Watch(ctx context.Context) error {
	if !p.watching.CompareAndSwap(false, true) {
		return ErrAlreadyWatching
	}
	select {
	case <-p.stop:
		return ErrProviderClosed
	default:
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsconfig: create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Directories are watched so atomic rename-into-place updates are seen
	// and the watch survives the files being replaced.
	dirs := map[string]struct{}{
		filepath.Clean(filepath.Dir(p.files.CertFile)): {},
		filepath.Clean(filepath.Dir(p.files.KeyFile)):  {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("tlsconfig: watch %s: %w", dir, err)
		}
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !p.relevant(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(p.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			if err := p.Reload(); err != nil {
				p.logger.WarnContext(ctx, "tls certificate reload failed", slog.Any("error", err))
				continue
			}
			p.logger.InfoContext(ctx, "tls certificate reloaded", slog.String("cert_file", p.files.CertFile))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.WarnContext(ctx, "tls file watcher error", slog.Any("error", err))
		}
	}
}

// Close stops Watch. Safe to call more than once.
func (p *Provider) Close() error {
	p.closeMu.Do(func() { close(p.stop) })
	return nil
}

// kubeDataDir is the symlink Kubernetes swaps atomically when a mounted
// secret or configmap changes.
const kubeDataDir = "..data"

func (p *Provider) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(ev.Name)
	for _, file := range []string{p.files.CertFile, p.files.KeyFile} {
		file = filepath.Clean(file)
		if name == file {
			return true
		}
		if filepath.Base(name) == kubeDataDir && filepath.Dir(name) == filepath.Dir(file) {
			return true
		}
	}
	return false
}
