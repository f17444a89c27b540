package vectordb

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCacheKey_DependsOnContentAndModel(t *testing.T) {
	a := CacheKey([]byte("hello"), "ernie-tiny")
	b := CacheKey([]byte("hello"), "ernie-base")
	c := CacheKey([]byte("world"), "ernie-tiny")

	if a == b {
		t.Error("same content with different models must produce different keys")
	}
	if a == c {
		t.Error("different content with the same model must produce different keys")
	}
	if a != CacheKey([]byte("hello"), "ernie-tiny") {
		t.Error("cache key is not deterministic")
	}
}

func TestIndexCache_BuildsOncePerKey(t *testing.T) {
	ctx := context.Background()
	cache := NewIndexCache()

	builds := 0
	build := func() (VectorStore, error) {
		builds++
		return Build(ctx, newMockEmbedder(16), sampleDocs())
	}

	first, err := cache.GetOrBuild("key-a", build)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	second, err := cache.GetOrBuild("key-a", build)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}

	if builds != 1 {
		t.Errorf("build ran %d times, want 1", builds)
	}
	if first != second {
		t.Error("expected the cached store on second call")
	}

	if _, err := cache.GetOrBuild("key-b", build); err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if builds != 2 {
		t.Errorf("build ran %d times after second key, want 2", builds)
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d entries, want 2", cache.Len())
	}
}

func TestIndexCache_FailedBuildNotCached(t *testing.T) {
	cache := NewIndexCache()
	boom := errors.New("boom")

	_, err := cache.GetOrBuild("key", func() (VectorStore, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}

	// A later build for the same key must run again and can succeed.
	store, err := cache.GetOrBuild("key", func() (VectorStore, error) {
		return Build(context.Background(), newMockEmbedder(16), sampleDocs())
	})
	if err != nil {
		t.Fatalf("GetOrBuild after failure: %v", err)
	}
	if store == nil {
		t.Fatal("expected a store after retry")
	}
}

func TestIndexCache_ConcurrentSameKey(t *testing.T) {
	ctx := context.Background()
	cache := NewIndexCache()

	var mu sync.Mutex
	builds := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrBuild("shared", func() (VectorStore, error) {
				mu.Lock()
				builds++
				mu.Unlock()
				return Build(ctx, newMockEmbedder(16), sampleDocs())
			})
			if err != nil {
				t.Errorf("GetOrBuild: %v", err)
			}
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("concurrent identical requests ran %d builds, want 1", builds)
	}
}
