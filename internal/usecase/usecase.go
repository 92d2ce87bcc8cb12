// Package usecase implements URL shortening on a fast cache in front of a
// durable store.
//
// The cache holds three kinds of keys: the code counter, "url:<code>" entries
// filled lazily on lookup, and "stats:<code>" visit counters. The durable store
// owns URL and visit records. Writes to the two stores are independent steps:
// a failure of the second one is neither rolled back nor retried.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	urlKeyPrefix   = "url:"
	statsKeyPrefix = "stats:"
)

func urlKey(shortCode string) string {
	return urlKeyPrefix + shortCode
}

func statsKey(shortCode string) string {
	return statsKeyPrefix + shortCode
}

type codeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type urlRepository interface {
	Save(ctx context.Context, shortCode, originalURL string, expireAt *time.Time) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
}

type visitRepository interface {
	Save(ctx context.Context, urlID int64, ip string) (*entity.Visit, error)
}

type cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Incr(ctx context.Context, key string) (int64, error)
}

type recorder interface {
	CacheLookup(hit bool)
	URLShortened()
	VisitLogged(recorded bool)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(bool) {}
func (nopRecorder) URLShortened()    {}
func (nopRecorder) VisitLogged(bool) {}

type Option func(*URLUseCase)

func WithLogger(logger *slog.Logger) Option {
	return func(uc *URLUseCase) {
		uc.logger = logger
	}
}

func WithMetrics(m recorder) Option {
	return func(uc *URLUseCase) {
		uc.metrics = m
	}
}

type URLUseCase struct {
	codeGen   codeGenerator
	urlRepo   urlRepository
	visitRepo visitRepository
	cache     cache
	logger    *slog.Logger
	metrics   recorder
}

func NewURLUseCase(
	codeGen codeGenerator,
	urlRepo urlRepository,
	visitRepo visitRepository,
	cache cache,
	opts ...Option,
) *URLUseCase {
	uc := &URLUseCase{
		codeGen:   codeGen,
		urlRepo:   urlRepo,
		visitRepo: visitRepo,
		cache:     cache,
		logger:    slog.New(slog.DiscardHandler),
		metrics:   nopRecorder{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL stores originalURL under a newly generated short code and primes
// the cache with it. expireAt is stored as given and never evaluated.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string, expireAt *time.Time) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	shortCode, err := uc.codeGen.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	url, err := uc.urlRepo.Save(ctx, shortCode, originalURL, expireAt)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	uc.metrics.URLShortened()
	uc.populate(ctx, op, url.ShortCode, url.OriginalURL)

	return url, nil
}

// ResolveShortCode returns the original URL for shortCode. The cache is
// consulted first; on a miss the durable store is queried and the cache is
// refilled. The boolean is false when no URL carries the code.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (string, bool, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	originalURL, ok, err := uc.cache.Get(ctx, urlKey(shortCode))
	if err != nil {
		return "", false, fmt.Errorf("%s: failed to read cache: %w", op, err)
	}

	uc.metrics.CacheLookup(ok)
	if ok {
		return originalURL, true, nil
	}

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	uc.populate(ctx, op, shortCode, url.OriginalURL)

	return url.OriginalURL, true, nil
}

// LogVisit records a visit of shortCode from ip in the durable store and bumps
// the cached visit counter. A code with no URL record is dropped silently.
func (uc *URLUseCase) LogVisit(ctx context.Context, shortCode, ip string) error {
	const op = "usecase.URLUseCase.LogVisit"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			uc.metrics.VisitLogged(false)
			return nil
		}

		return fmt.Errorf("%s: failed to look up url: %w", op, err)
	}

	if _, err := uc.visitRepo.Save(ctx, url.ID, ip); err != nil {
		if errors.Is(err, entity.ErrURLReference) {
			uc.metrics.VisitLogged(false)
			return nil
		}

		return fmt.Errorf("%s: failed to save visit: %w", op, err)
	}

	if _, err := uc.cache.Incr(ctx, statsKey(shortCode)); err != nil {
		return fmt.Errorf("%s: failed to increment visit counter: %w", op, err)
	}

	uc.metrics.VisitLogged(true)

	return nil
}

// GetURLStats returns the cached visit count of shortCode. An absent counter
// reads as zero; the durable visit records are not consulted.
func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (int64, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	val, ok, err := uc.cache.Get(ctx, statsKey(shortCode))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read visit counter: %w", op, err)
	}

	if !ok {
		return 0, nil
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil || count < 0 {
		uc.logger.WarnContext(ctx, "malformed visit counter",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.String("value", val),
		)
		return 0, nil
	}

	return count, nil
}

// populate writes the url entry for shortCode. Failures are logged and
// otherwise ignored.
func (uc *URLUseCase) populate(ctx context.Context, op, shortCode, originalURL string) {
	if err := uc.cache.Set(ctx, urlKey(shortCode), originalURL); err != nil {
		uc.logger.WarnContext(ctx, "failed to populate cache",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}
}
