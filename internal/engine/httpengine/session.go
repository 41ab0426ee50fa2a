package httpengine

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/browserkit/internal/engine"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/observer"
)

// Session is an HTTP-backed engine session.
type Session struct {
	client    *client
	private   bool
	logger    *logging.Logger
	observers observer.Registry[engine.Observer]

	loads sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	cancel  context.CancelFunc
	history []string
	index   int
	page    *document
	find    findState
}

type findState struct {
	query   string
	matches int
	active  int
}

func newSession(c *client, private bool, logger *logging.Logger) *Session {
	return &Session{
		client:  c,
		private: private,
		logger:  logger,
		index:   -1,
	}
}

func (s *Session) Register(o engine.Observer)   { s.observers.Register(o) }
func (s *Session) Unregister(o engine.Observer) { s.observers.Unregister(o) }

// LoadURL starts loading rawURL and adds it to the history.
func (s *Session) LoadURL(rawURL string) error {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return err
	}
	return s.start(target, true)
}

// GoBack loads the previous history entry.
func (s *Session) GoBack() error {
	return s.step(-1)
}

// GoForward loads the next history entry.
func (s *Session) GoForward() error {
	return s.step(1)
}

// Reload loads the current history entry again.
func (s *Session) Reload() error {
	return s.step(0)
}

func (s *Session) step(delta int) error {
	s.mu.Lock()
	next := s.index + delta
	if next < 0 || next >= len(s.history) {
		s.mu.Unlock()
		return fmt.Errorf("no history entry at offset %d", delta)
	}
	s.index = next
	target := s.history[next]
	s.mu.Unlock()

	return s.start(target, false)
}

// Close cancels any load and drops the observers.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return engine.ErrSessionClosed
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.observers.UnregisterAll()
	return nil
}

// Wait blocks until loads started so far have finished.
func (s *Session) Wait() {
	s.loads.Wait()
}

// Private reports whether the session is private.
func (s *Session) Private() bool { return s.private }

// start cancels the running load and loads target in the background.
func (s *Session) start(target string, push bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return engine.ErrSessionClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loads.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.loads.Done()
		defer cancel()
		s.load(ctx, target, push)
	}()
	return nil
}

func (s *Session) load(ctx context.Context, target string, push bool) {
	s.notify(func(o engine.Observer) {
		o.OnLoadingStateChange(true)
		o.OnProgress(10)
	})
	defer s.notify(func(o engine.Observer) {
		o.OnProgress(100)
		o.OnLoadingStateChange(false)
	})

	resp, err := s.client.fetch(ctx, target)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("Page load failed", zap.String("url", target), zap.Error(err))
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	s.notify(func(o engine.Observer) { o.OnProgress(60) })

	if !isPage(resp) {
		resource := engine.ExternalResource{
			URL:           resp.URL,
			FileName:      fileName(resp),
			ContentType:   resp.ContentType,
			ContentLength: int64(len(resp.Body)),
		}
		s.notify(func(o engine.Observer) { o.OnExternalResource(resource) })
		return
	}

	doc, err := parseDocument(resp)
	if err != nil {
		s.logger.Warn("Failed to parse page", zap.String("url", resp.URL), zap.Error(err))
		return
	}

	canGoBack, canGoForward := s.commit(doc, target, push)
	host := hostOf(resp.URL)

	s.notify(func(o engine.Observer) {
		o.OnLocationChange(resp.URL)
		o.OnTitleChange(doc.Title)
		o.OnSecurityChange(resp.Secure, host, resp.Issuer)
		o.OnNavigationStateChange(&canGoBack, &canGoForward)
	})
}

// commit makes doc the current page and updates the history.
func (s *Session) commit(doc *document, requested string, push bool) (canGoBack, canGoForward bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if push {
		s.history = append(s.history[:s.index+1], doc.URL)
		s.index = len(s.history) - 1
	} else if s.index >= 0 && s.history[s.index] == requested {
		s.history[s.index] = doc.URL
	}
	s.page = doc
	s.find = findState{}

	return s.index > 0, s.index < len(s.history)-1
}

// History returns the history entries and the current index.
func (s *Session) History() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...), s.index
}

// FindAll highlights every occurrence of text on the current page.
func (s *Session) FindAll(text string) error {
	s.mu.Lock()
	matches := s.page.countMatches(text)
	s.find = findState{query: text, matches: matches}
	s.mu.Unlock()

	s.notify(func(o engine.Observer) { o.OnFindResult(0, matches, true) })
	return nil
}

// FindNext moves to the next or previous match.
func (s *Session) FindNext(forward bool) error {
	s.mu.Lock()
	if s.find.matches == 0 {
		s.mu.Unlock()
		return nil
	}
	if forward {
		s.find.active = (s.find.active + 1) % s.find.matches
	} else {
		s.find.active = (s.find.active - 1 + s.find.matches) % s.find.matches
	}
	active, matches := s.find.active, s.find.matches
	s.mu.Unlock()

	s.notify(func(o engine.Observer) { o.OnFindResult(active, matches, true) })
	return nil
}

// ClearMatches ends find in page.
func (s *Session) ClearMatches() error {
	s.mu.Lock()
	s.find = findState{}
	s.mu.Unlock()
	return nil
}

func (s *Session) notify(fn func(engine.Observer)) {
	s.observers.Notify(fn)
}

func normalizeURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	switch parsed.Scheme {
	case "http", "https":
	case "":
		parsed, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
		}
	default:
		return "", fmt.Errorf("%w: scheme %q", engine.ErrUnsupported, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid url %q: missing host", rawURL)
	}
	return parsed.String(), nil
}

func hostOf(rawURL string) *string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil
	}
	host := parsed.Hostname()
	return &host
}

func fileName(resp *response) string {
	if _, params, err := parseDisposition(resp.Disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	if parsed, err := url.Parse(resp.URL); err == nil {
		if base := path.Base(parsed.Path); base != "/" && base != "." {
			return base
		}
	}
	return "download"
}

var (
	_ engine.Session   = (*Session)(nil)
	_ engine.Navigator = (*Session)(nil)
	_ engine.Finder    = (*Session)(nil)
)
