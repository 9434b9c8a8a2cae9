package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ougirez/covid-dashboard/internal/domain"
	"github.com/ougirez/covid-dashboard/internal/pkg/logger"
)

type Options struct {
	Timeout    time.Duration
	MaxRetries uint64
	RetryDelay time.Duration
	UserAgent  string
}

type Service struct {
	client *http.Client
	opts   Options
}

func NewFetcherService(client *http.Client, opts Options) *Service {
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "covid-dashboard/1.0"
	}
	return &Service{client: client, opts: opts}
}

// FetchAll downloads every source concurrently. The first failure cancels
// the remaining downloads.
func (s *Service) FetchAll(ctx context.Context, sources map[domain.Metric]string) (map[domain.Metric][]byte, error) {
	payloads := make(map[domain.Metric][]byte, len(sources))
	payloadsMx := sync.Mutex{}

	eg, egCtx := errgroup.WithContext(ctx)
	for metric, url := range sources {
		metric, url := metric, url
		eg.Go(func() error {
			body, err := s.Fetch(egCtx, metric, url)
			if err != nil {
				return err
			}

			payloadsMx.Lock()
			defer payloadsMx.Unlock()
			payloads[metric] = body
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return payloads, nil
}

// Fetch downloads one source. Failures are *domain.FetchError; retries only
// happen when MaxRetries > 0.
func (s *Service) Fetch(ctx context.Context, metric domain.Metric, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	err := backoff.Retry(
		func() error {
			attempt++
			b, err := s.get(ctx, metric, url)
			if err != nil {
				var fetchErr *domain.FetchError
				if errors.As(err, &fetchErr) && fetchErr.StatusCode >= 400 && fetchErr.StatusCode < 500 {
					return backoff.Permanent(err)
				}
				if s.opts.MaxRetries > 0 {
					logger.Warnf(ctx, "fetch %s attempt %d: %s", metric, attempt, err.Error())
				}
				return err
			}
			body = b
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryDelay), s.opts.MaxRetries),
			ctx,
		),
	)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			return nil, fetchErr
		}
		return nil, &domain.FetchError{Metric: metric, URL: url, Err: err}
	}

	logger.Infof(ctx, "fetched %s: %d bytes", metric, len(body))
	return body, nil
}

func (s *Service) get(ctx context.Context, metric domain.Metric, url string) (body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(&domain.FetchError{Metric: metric, URL: url, Err: err})
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Metric: metric, URL: url, Err: err}
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil && err == nil {
			err = &domain.FetchError{Metric: metric, URL: url, Err: fmt.Errorf("close body: %w", closeErr)}
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{
			Metric:     metric,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status),
		}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Metric: metric, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}
