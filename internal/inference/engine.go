// Package inference normalizes the supported model artifact formats behind
// one adapter contract and owns the loaded model's lifecycle.
package inference

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// Engine is the explicitly owned model handle: loaded once at startup,
// injectable, reloadable. Read-mostly shared state; the RWMutex covers
// reload, not individual Infer calls (adapters state their own reentrancy).
type Engine struct {
	mu         sync.RWMutex
	adapter    domain.Adapter
	degenerate bool
	log        *logrus.Logger
}

// NewEngine creates an engine with no model loaded.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{log: logger}
}

// Load resolves the artifact in dir, constructs the adapter and runs the
// post-load self-test. A degenerate result does not fail the load; it is
// recorded and surfaced through Healthy so operators can catch a
// misconfigured deployment.
func (e *Engine) Load(dir string) error {
	adapter, err := OpenAdapter(dir, e.log)
	if err != nil {
		return err
	}

	degenerate, err := SanityCheck(adapter)
	if err != nil {
		adapter.Close()
		return fmt.Errorf("post-load self-test: %w", err)
	}
	if degenerate {
		e.log.WithField("dir", dir).Error("Loaded model produced near-uniform output, flagging degenerate")
	}

	e.mu.Lock()
	old := e.adapter
	e.adapter = adapter
	e.degenerate = degenerate
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Adapter returns the loaded adapter, or ErrModelUnavailable when nothing is
// loaded or the load was flagged degenerate.
func (e *Engine) Adapter() (domain.Adapter, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.adapter == nil || e.degenerate {
		return nil, domain.ErrModelUnavailable
	}
	return e.adapter, nil
}

// Healthy reports whether a non-degenerate model is loaded.
func (e *Engine) Healthy() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.adapter != nil && !e.degenerate
}

// Degenerate reports whether the last load was flagged by the self-test.
func (e *Engine) Degenerate() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.degenerate
}

// Normalization exposes the loaded artifact's input range so the
// preprocessor can be configured consistently. Defaults to unit range when
// nothing is loaded.
func (e *Engine) Normalization() domain.NormalizationMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.adapter == nil {
		return domain.NormUnit
	}
	return e.adapter.Normalization()
}

// Close releases the loaded adapter.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.adapter == nil {
		return nil
	}
	err := e.adapter.Close()
	e.adapter = nil
	e.degenerate = false
	return err
}
