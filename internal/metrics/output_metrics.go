// Package metrics measures the templates and pages of a render in the
// background while the render goes on.
package metrics

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Metric types recorded by the renderer.
const (
	TypeTemplate = "template" // a template or include, keyed by path
	TypeFinal    = "final"    // a rendered page, keyed by URL
)

// MetricKey names one measured template or page.
type MetricKey struct {
	Type string
	Key  string
}

func (k MetricKey) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.Key)
}

// NewKey returns the key of a measured template or page.
func NewKey(typ, key string) MetricKey {
	return MetricKey{Type: typ, Key: key}
}

// MetricItem accumulates the measurements of one key. A template included
// several times is counted every time.
type MetricItem struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

func (m *MetricItem) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

type sample struct {
	key  MetricKey
	text string
}

// OutputMetrics counts the templates and pages of a render in background
// workers.
type OutputMetrics struct {
	mu    sync.Mutex
	Items map[MetricKey]MetricItem
	Ctr   Counter

	wg      sync.WaitGroup
	sendMu  sync.RWMutex // guards samples and closed
	samples chan sample
	closed  bool
}

// NewOutputMetrics starts workers goroutines measuring with counter.
func NewOutputMetrics(counter Counter, workers int) *OutputMetrics {
	workers = max(workers, 1)
	m := &OutputMetrics{
		Items:   map[MetricKey]MetricItem{},
		Ctr:     counter,
		samples: make(chan sample, workers*2),
	}
	m.wg.Add(workers)
	for range workers {
		go m.work()
	}
	return m
}

func (m *OutputMetrics) work() {
	defer m.wg.Done()
	for s := range m.samples {
		bytes, tokens, lines := m.Ctr.Count(s.text)

		m.mu.Lock()
		item := m.Items[s.key]
		item.Add(bytes, tokens, lines)
		m.Items[s.key] = item
		m.mu.Unlock()
	}
}

// Add queues content to be counted. Content added after Wait is dropped.
func (m *OutputMetrics) Add(typ, key string, content []byte) {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()
	if m.closed || m.samples == nil {
		return
	}
	m.samples <- sample{key: NewKey(typ, key), text: string(content)}
}

// Wait stops accepting content and waits for the queued content to be
// counted. It may be called more than once.
func (m *OutputMetrics) Wait() {
	m.sendMu.Lock()
	if !m.closed && m.samples != nil {
		close(m.samples)
	}
	m.closed = true
	m.sendMu.Unlock()

	m.wg.Wait()
}

// SumBy totals the items of one type.
func (m *OutputMetrics) SumBy(typ string) MetricItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum MetricItem
	for k, v := range m.Items {
		if k.Type == typ {
			sum.Add(v.Bytes, v.Tokens, v.Lines)
		}
	}
	return sum
}

// MarshalJSON encodes the items as an object keyed by "type:key".
func (m *OutputMetrics) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]MetricItem, len(m.Items))
	for k, v := range m.Items {
		out[k.String()] = v
	}
	return json.Marshal(out)
}
