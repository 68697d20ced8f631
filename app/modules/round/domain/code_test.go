package rounddomain

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	g := NewCodeGenerator()
	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, code.String(), CodeLength)
		assert.True(t, code.Valid(), "code %q", code)
	}
}

func TestGenerate_SkipsBiasedBytes(t *testing.T) {
	// 255 is above the unbiased range and must be discarded.
	src := bytes.NewReader([]byte{255, 255, 0, 1, 2, 35, 36, 71, 0, 0, 0, 0})
	code, err := NewCodeGeneratorFrom(src).Generate()
	require.NoError(t, err)
	assert.Equal(t, Code("ABC9A9"), code)
}

func TestGenerate_RandomSourceError(t *testing.T) {
	_, err := NewCodeGeneratorFrom(bytes.NewReader(nil)).Generate()
	assert.Error(t, err)
}

func TestGenerateUnique_RetriesUntilFree(t *testing.T) {
	g := NewCodeGenerator()
	calls := 0
	code, err := g.GenerateUnique(context.Background(), func(context.Context, Code) (bool, error) {
		calls++
		return calls < 5, nil
	})
	require.NoError(t, err)
	assert.True(t, code.Valid())
	assert.Equal(t, 5, calls)
}

func TestGenerateUnique_StopsOnLookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewCodeGenerator().GenerateUnique(context.Background(), func(context.Context, Code) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGenerateUnique_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := NewCodeGenerator().GenerateUnique(ctx, func(context.Context, Code) (bool, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return true, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateUnique_ConcurrentCallersNeverCollide(t *testing.T) {
	g := NewCodeGenerator()

	var mu sync.Mutex
	taken := make(map[Code]struct{})
	claim := func(c Code) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := taken[c]; ok {
			return false
		}
		taken[c] = struct{}{}
		return true
	}

	const n = 10000
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				code, err := g.GenerateUnique(context.Background(), func(_ context.Context, c Code) (bool, error) {
					mu.Lock()
					defer mu.Unlock()
					_, ok := taken[c]
					return ok, nil
				})
				if err != nil {
					errs <- err
					return
				}
				// Another goroutine may claim the same code between check and
				// claim; that is the store's unique constraint firing, so retry.
				if claim(code) {
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Len(t, taken, n)
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode("  ab12cd ")
	require.NoError(t, err)
	assert.Equal(t, Code("AB12CD"), code)

	_, err = ParseCode("   ")
	assert.ErrorIs(t, err, ErrEmptyCode)

	assert.False(t, Code("AB12C").Valid())
	assert.False(t, Code("ab12cd").Valid())
}
