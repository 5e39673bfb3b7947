package nb2html_test

import (
	"runtime"
	"sync"
	"testing"

	nb2html "github.com/alnah/go-nb2html"
)

// ---------------------------------------------------------------------------
// TestConverterPool - Lazy creation and reuse
// ---------------------------------------------------------------------------

func TestConverterPoolAcquireRelease(t *testing.T) {
	t.Parallel()

	pool := nb2html.NewConverterPool(2)
	defer pool.Close()

	if pool.Size() != 2 {
		t.Errorf("Size() = %d, want 2", pool.Size())
	}

	c1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	c2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if c1 == c2 {
		t.Error("distinct acquires should yield distinct converters")
	}

	pool.Release(c1)
	c3, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if c3 != c1 {
		t.Error("released converter should be reused")
	}

	pool.Release(c2)
	pool.Release(c3)
}

func TestConverterPoolMinimumSize(t *testing.T) {
	t.Parallel()

	pool := nb2html.NewConverterPool(0)
	defer pool.Close()

	if pool.Size() != 1 {
		t.Errorf("Size() = %d, want 1 for n < 1", pool.Size())
	}
}

func TestConverterPoolInvalidOptions(t *testing.T) {
	t.Parallel()

	pool := nb2html.NewConverterPool(1, nb2html.WithTemplate(nb2html.TemplateKind("fancy")))
	defer pool.Close()

	if _, err := pool.Acquire(); err == nil {
		t.Fatal("Acquire() with invalid options should error")
	}

	// Construction failures must not leak capacity.
	if _, err := pool.Acquire(); err == nil {
		t.Fatal("second Acquire() should also surface the construction error")
	}
}

func TestConverterPoolConcurrent(t *testing.T) {
	t.Parallel()

	pool := nb2html.NewConverterPool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() unexpected error: %v", err)
				return
			}
			pool.Release(c)
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// TestResolvePoolSize - Worker count resolution
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := nb2html.ResolvePoolSize(3); got != 3 {
		t.Errorf("ResolvePoolSize(3) = %d, want 3", got)
	}

	got := nb2html.ResolvePoolSize(0)
	if got < nb2html.MinPoolSize || got > nb2html.MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want within [%d, %d]", got, nb2html.MinPoolSize, nb2html.MaxPoolSize)
	}

	want := runtime.GOMAXPROCS(0) / 2
	if want < nb2html.MinPoolSize {
		want = nb2html.MinPoolSize
	}
	if want > nb2html.MaxPoolSize {
		want = nb2html.MaxPoolSize
	}
	if got != want {
		t.Errorf("ResolvePoolSize(0) = %d, want %d for GOMAXPROCS %d", got, want, runtime.GOMAXPROCS(0))
	}
}
