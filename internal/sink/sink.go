package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/vk/animgraph/internal/ctxlog"
)

// UpdateRecord is one view-property update produced by a frame.
type UpdateRecord struct {
	ViewTag int            `json:"viewTag"`
	Props   map[string]any `json:"props"`
}

// Sink receives view-property updates.
type Sink interface {
	UpdateView(ctx context.Context, viewTag int, props map[string]any) error
}

// Collector accumulates the updates of a single frame.
type Collector struct {
	records []UpdateRecord
}

// Add appends an update. Records for an invalid view tag are discarded.
func (c *Collector) Add(viewTag int, props map[string]any) bool {
	if viewTag <= 0 {
		return false
	}
	c.records = append(c.records, UpdateRecord{ViewTag: viewTag, Props: props})
	return true
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	return len(c.records)
}

// Records returns the collected records in insertion order and resets the
// collector.
func (c *Collector) Records() []UpdateRecord {
	r := c.records
	c.records = nil
	return r
}

// Flush forwards records to s in order. Every record is delivered even if an
// earlier one fails; the failures are joined.
func Flush(ctx context.Context, s Sink, records []UpdateRecord) error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, r := range records {
		if err := s.UpdateView(ctx, r.ViewTag, r.Props); err != nil {
			errs = append(errs, fmt.Errorf("update view %d: %w", r.ViewTag, err))
		}
	}
	return errors.Join(errs...)
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(ctx context.Context, viewTag int, props map[string]any) error

func (f FuncSink) UpdateView(ctx context.Context, viewTag int, props map[string]any) error {
	return f(ctx, viewTag, props)
}

// Discard drops every update.
var Discard Sink = FuncSink(func(context.Context, int, map[string]any) error { return nil })

// multi fans each update out to several sinks.
type multi []Sink

// Multi returns a Sink delivering each update to every sink in order.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) UpdateView(ctx context.Context, viewTag int, props map[string]any) error {
	var errs []error
	for _, s := range m {
		if err := s.UpdateView(ctx, viewTag, props); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink logs each update with the logger carried by the context.
type LogSink struct{}

func (LogSink) UpdateView(ctx context.Context, viewTag int, props map[string]any) error {
	ctxlog.FromContext(ctx).Info("View updated.", "view", viewTag, "props", props)
	return nil
}

// JSONSink writes one JSON object per update to w.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink returns a sink writing newline-delimited JSON to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) UpdateView(_ context.Context, viewTag int, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(UpdateRecord{ViewTag: viewTag, Props: props}); err != nil {
		return fmt.Errorf("failed to encode update for view %d: %w", viewTag, err)
	}
	return nil
}
