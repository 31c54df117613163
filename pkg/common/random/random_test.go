package random

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformStaysInRange(t *testing.T) {
	for _, src := range []Source{New(0), New(7)} {
		for i := 0; i < 1000; i++ {
			v := src.Uniform(0.85, 0.95)
			assert.GreaterOrEqual(t, v, 0.85)
			assert.Less(t, v, 0.95)

			n := src.IntRange(3, 8)
			assert.GreaterOrEqual(t, n, 3)
			assert.Less(t, n, 8)
		}
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Uniform(0, 1), b.Uniform(0, 1))
		assert.Equal(t, a.IntRange(0, 100), b.IntRange(0, 100))
	}
}

func TestSeededConcurrentUse(t *testing.T) {
	src := New(3)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				src.Uniform(100, 200)
			}
		}()
	}
	wg.Wait()
}

func TestEmptyIntRange(t *testing.T) {
	assert.Equal(t, 5, New(0).IntRange(5, 5))
	assert.Equal(t, 5, New(1).IntRange(5, 2))
}

func TestFixed(t *testing.T) {
	f := Fixed{Value: 0.9}
	assert.Equal(t, 0.9, f.Uniform(0, 0.2))
	assert.Equal(t, 3, f.IntRange(3, 8))
	assert.Equal(t, 6, Fixed{Int: 6}.IntRange(3, 8))
}
