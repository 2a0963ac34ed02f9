// Package store holds the most recent scan result for retrieval by
// the web layer. One slot, replaced atomically, alive for the process
// lifetime.
package store

import (
	"sync/atomic"

	"github.com/wudi/docscan/pipeline"
)

// Store keeps the latest completed scan result. The zero value is
// ready to use and empty.
type Store struct {
	current atomic.Pointer[pipeline.Result]
}

// Put replaces the stored result. Readers never observe a partially
// written value.
func (s *Store) Put(res *pipeline.Result) {
	s.current.Store(res)
}

// Get returns the current result, or false if no run has completed
// yet.
func (s *Store) Get() (*pipeline.Result, bool) {
	res := s.current.Load()
	return res, res != nil
}
