package towerhamlets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// JWTTokenSource drives a headless browser through the Gladstone booking page
// once and captures the JWT cookie the site sets for anonymous sessions. The
// token is cached for the lifetime of the source; Refresh discards it.
type JWTTokenSource struct {
	bookingURL  string
	loadTimeout time.Duration

	mu    sync.Mutex
	token string
}

func NewJWTTokenSource(bookingURL string, loadTimeout time.Duration) *JWTTokenSource {
	if loadTimeout <= 0 {
		loadTimeout = 45 * time.Second
	}
	return &JWTTokenSource{bookingURL: bookingURL, loadTimeout: loadTimeout}
}

func (s *JWTTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}
	token, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

func (s *JWTTokenSource) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	token, err := s.acquire(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

func (s *JWTTokenSource) acquire(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...any) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancelBrowser()

	var token string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.bookingURL),
		// The site issues the session cookie from a script after load.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				if strings.EqualFold(c.Name, "jwt") {
					token = c.Value
					return nil
				}
			}
			return fmt.Errorf("jwt cookie not set after page load")
		}),
	)
	if err != nil {
		return "", fmt.Errorf("acquire gladstone token from %s: %w", s.bookingURL, err)
	}
	slog.Info("Acquired booking session token", "url", s.bookingURL)
	return token, nil
}
