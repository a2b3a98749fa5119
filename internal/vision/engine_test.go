package vision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/attend/internal/config"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.VisionConfig{ModelsDir: t.TempDir(), DetectionThreshold: 0.5}
	return NewEngine(cfg, config.RecognitionConfig{PoseAngleThreshold: 20})
}

func TestEngineReadyBeforeLoad(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Ready())
}

func TestEngineReadyFalseAfterFailedLoad(t *testing.T) {
	e := newTestEngine(t)

	// No model files in the temp dir, so the load fails and stays failed.
	err := e.load()
	assert.Error(t, err)
	assert.False(t, e.Ready())

	// The failure is sticky.
	assert.Error(t, e.load())
	assert.False(t, e.Ready())
}

func TestEngineReadyConcurrentWithLoad(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.Ready()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.load()
	}()
	wg.Wait()

	assert.False(t, e.Ready())
}
