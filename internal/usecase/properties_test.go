package usecase

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/shortcode"
	"golang.org/x/sync/errgroup"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.data[key]
	return val, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// flush drops everything except the code counter, like losing the url and
// stats entries while keeping the issued codes monotonic.
func (c *fakeCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.data {
		if key != shortcode.CounterKey {
			delete(c.data, key)
		}
	}
}

type fakeStore struct {
	mu     sync.Mutex
	urls   map[string]*entity.URL
	visits []*entity.Visit
	lookup int
}

func newFakeStore() *fakeStore {
	return &fakeStore{urls: make(map[string]*entity.URL)}
}

func (s *fakeStore) Save(_ context.Context, shortCode, originalURL string, expireAt *time.Time) (*entity.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[shortCode]; ok {
		return nil, entity.ErrShortCodeExists
	}

	url := &entity.URL{
		ID:          int64(len(s.urls) + 1),
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now(),
		ExpireAt:    expireAt,
	}
	s.urls[shortCode] = url

	return url, nil
}

func (s *fakeStore) RetrieveByShortCode(_ context.Context, shortCode string) (*entity.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookup++
	url, ok := s.urls[shortCode]
	if !ok {
		return nil, entity.ErrURLNotFound
	}

	return url, nil
}

func (s *fakeStore) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup
}

type fakeVisitStore struct {
	store *fakeStore
}

func (v fakeVisitStore) Save(_ context.Context, urlID int64, ip string) (*entity.Visit, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	visit := &entity.Visit{
		ID:        int64(len(v.store.visits) + 1),
		URLID:     urlID,
		IP:        ip,
		Timestamp: time.Now(),
	}
	v.store.visits = append(v.store.visits, visit)

	return visit, nil
}

func newFakeUseCase() (*URLUseCase, *fakeStore, *fakeCache) {
	store := newFakeStore()
	c := newFakeCache()
	uc := NewURLUseCase(shortcode.NewGenerator(c), store, fakeVisitStore{store: store}, c)

	return uc, store, c
}

func TestURLUseCase_RoundTrip(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newFakeUseCase()

	url, err := uc.ShortenURL(ctx, "https://example.com/very-long-url", nil)
	require.NoError(t, err)
	assert.Equal(t, shortcode.Encode(1), url.ShortCode)

	originalURL, ok, err := uc.ResolveShortCode(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/very-long-url", originalURL)

	count, err := uc.GetURLStats(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestURLUseCase_VisitScenario(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newFakeUseCase()

	url, err := uc.ShortenURL(ctx, "https://example.com/very-long-url", nil)
	require.NoError(t, err)

	originalURL, ok, err := uc.ResolveShortCode(ctx, url.ShortCode)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/very-long-url", originalURL)

	require.NoError(t, uc.LogVisit(ctx, url.ShortCode, "203.0.113.7"))

	count, err := uc.GetURLStats(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.Len(t, store.visits, 1)
	assert.Equal(t, url.ID, store.visits[0].URLID)
	assert.Equal(t, "203.0.113.7", store.visits[0].IP)
}

func TestURLUseCase_ConcurrentShortenYieldsDistinctCodes(t *testing.T) {
	const n = 64

	ctx := context.Background()
	uc, _, _ := newFakeUseCase()

	codes := make([]string, n)

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			url, err := uc.ShortenURL(ctx, "https://example.com/"+strconv.Itoa(i), nil)
			if err != nil {
				return err
			}
			codes[i] = url.ShortCode
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]struct{}, n)
	for i, code := range codes {
		_, dup := seen[code]
		assert.False(t, dup, "duplicate code %q", code)
		seen[code] = struct{}{}

		originalURL, ok, err := uc.ResolveShortCode(ctx, code)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/"+strconv.Itoa(i), originalURL)
	}
}

func TestURLUseCase_SameURLTwice(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newFakeUseCase()

	var (
		first, second *entity.URL
		g             errgroup.Group
	)
	g.Go(func() (err error) {
		first, err = uc.ShortenURL(ctx, "https://example.com", nil)
		return err
	})
	g.Go(func() (err error) {
		second, err = uc.ShortenURL(ctx, "https://example.com", nil)
		return err
	})
	require.NoError(t, g.Wait())

	assert.NotEqual(t, first.ShortCode, second.ShortCode)

	for _, code := range []string{first.ShortCode, second.ShortCode} {
		originalURL, ok, err := uc.ResolveShortCode(ctx, code)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "https://example.com", originalURL)
	}
}

func TestURLUseCase_CacheTransparency(t *testing.T) {
	ctx := context.Background()
	uc, store, c := newFakeUseCase()

	url, err := uc.ShortenURL(ctx, "https://example.com", nil)
	require.NoError(t, err)

	_, _, err = uc.ResolveShortCode(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Zero(t, store.lookups(), "warm cache must not reach the store")

	c.flush()

	originalURL, ok, err := uc.ResolveShortCode(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", originalURL)
	assert.Equal(t, 1, store.lookups())

	cached, ok, _ := c.Get(ctx, "url:"+url.ShortCode)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", cached)

	_, _, err = uc.ResolveShortCode(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lookups())
}

func TestURLUseCase_UnknownCode(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newFakeUseCase()

	originalURL, ok, err := uc.ResolveShortCode(ctx, "doesNotExist")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, originalURL)

	require.NoError(t, uc.LogVisit(ctx, "doesNotExist", "127.0.0.1"))
	assert.Empty(t, store.visits)

	count, err := uc.GetURLStats(ctx, "doesNotExist")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestURLUseCase_VisitMonotonicity(t *testing.T) {
	const k = 25

	ctx := context.Background()
	uc, store, _ := newFakeUseCase()

	url, err := uc.ShortenURL(ctx, "https://example.com", nil)
	require.NoError(t, err)

	var g errgroup.Group
	for range k {
		g.Go(func() error {
			return uc.LogVisit(ctx, url.ShortCode, "127.0.0.1")
		})
	}
	require.NoError(t, g.Wait())

	count, err := uc.GetURLStats(ctx, url.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(k), count)
	assert.Len(t, store.visits, k)
}
