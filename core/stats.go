package core

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/searchktools/hidouki/core/pools"
)

type counters struct {
	accepted      atomic.Uint64
	acceptErrors  atomic.Uint64
	decodeErrors  atomic.Uint64
	notFound      atomic.Uint64
	handlerErrors atomic.Uint64
	writeErrors   atomic.Uint64
	served        atomic.Uint64
}

// Stats is a snapshot of engine counters
type Stats struct {
	Accepted      uint64            `json:"accepted"`
	AcceptErrors  uint64            `json:"accept_errors"`
	DecodeErrors  uint64            `json:"decode_errors"`
	NotFound      uint64            `json:"not_found"`
	HandlerErrors uint64            `json:"handler_errors"`
	WriteErrors   uint64            `json:"write_errors"`
	Served        uint64            `json:"served"`
	Buffers       pools.BufferStats `json:"buffers"`
}

// Stats returns the current counters
func (e *Engine) Stats() Stats {
	return Stats{
		Accepted:      e.counters.accepted.Load(),
		AcceptErrors:  e.counters.acceptErrors.Load(),
		DecodeErrors:  e.counters.decodeErrors.Load(),
		NotFound:      e.counters.notFound.Load(),
		HandlerErrors: e.counters.handlerErrors.Load(),
		WriteErrors:   e.counters.writeErrors.Load(),
		Served:        e.counters.served.Load(),
		Buffers:       e.buffers.Stats(),
	}
}

// StatsJSON returns the counters as indented JSON
func (e *Engine) StatsJSON() (string, error) {
	data, err := json.MarshalIndent(e.Stats(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	return string(data), nil
}

// StatsText returns the counters as human-readable text
func (e *Engine) StatsText() string {
	s := e.Stats()
	return fmt.Sprintf(`Engine Statistics
=================

Connections:
  Accepted:       %d
  Accept errors:  %d

Responses:
  Served:         %d
  Not found:      %d
  Decode errors:  %d
  Handler errors: %d
  Write errors:   %d

Encode buffers:
  Gets:     %d
  Hit Rate: %.2f%%
`,
		s.Accepted, s.AcceptErrors,
		s.Served, s.NotFound, s.DecodeErrors, s.HandlerErrors, s.WriteErrors,
		s.Buffers.Gets, s.Buffers.HitRate*100,
	)
}
