// debug_watchpoints.go - Fixed-capacity expression watchpoint pool for Machine Monitor

package main

import (
	"errors"
	"fmt"
	"sync"
)

const (
	maxWatchpoints   = 32
	maxWatchExprLen  = 127
	watchpointNoSlot = -1
)

var (
	ErrPoolExhausted      = errors.New("no free watchpoints")
	ErrWatchpointNotFound = errors.New("watchpoint not active")
	ErrWatchExprTooLong   = errors.New("watch expression too long")
)

// WatchpointError wraps a pool failure with the id involved, if any.
type WatchpointError struct {
	Err error
	ID  int
}

func (e *WatchpointError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("watchpoint %d: %v", e.ID, e.Err)
	}
	return e.Err.Error()
}

func (e *WatchpointError) Unwrap() error { return e.Err }

// WatchpointInfo is a read-only copy of one active watchpoint.
type WatchpointInfo struct {
	ID       int
	Expr     string
	Value    uint32
	OldValue uint32
}

// WatchpointHit describes a watchpoint whose value changed during Scan.
type WatchpointHit struct {
	ID       int
	Expr     string
	OldValue uint32
	NewValue uint32
}

type watchSlot struct {
	id    int
	expr  string
	value uint32
	old   uint32
}

// WatchpointPool owns a fixed arena of slots. Each slot index is on exactly
// one of the free stack or the active list at any time.
type WatchpointPool struct {
	mu     sync.Mutex
	slots  [maxWatchpoints]watchSlot
	free   []int // stack, top at the end
	active []int // most recently created first
	used   [maxWatchpoints + 1]bool
}

// NewWatchpointPool returns a pool with all slots free. Slot 0 is handed
// out first.
func NewWatchpointPool() *WatchpointPool {
	p := &WatchpointPool{
		free:   make([]int, 0, maxWatchpoints),
		active: make([]int, 0, maxWatchpoints),
	}
	for i := maxWatchpoints - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	return p
}

// Create moves a free slot to the head of the active list and gives it the
// lowest id not currently in use.
func (p *WatchpointPool) Create(expr string, value uint32) (int, error) {
	if len(expr) > maxWatchExprLen {
		return 0, &WatchpointError{Err: ErrWatchExprTooLong}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		return 0, &WatchpointError{Err: ErrPoolExhausted}
	}
	id := p.allocID()
	if id == 0 {
		// The id table and the free stack disagree.
		return 0, &WatchpointError{Err: ErrPoolExhausted}
	}

	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.active = append(p.active, watchpointNoSlot)
	copy(p.active[1:], p.active)
	p.active[0] = idx

	p.slots[idx] = watchSlot{id: id, expr: expr, value: value, old: value}
	return id, nil
}

func (p *WatchpointPool) allocID() int {
	for id := 1; id <= maxWatchpoints; id++ {
		if !p.used[id] {
			p.used[id] = true
			return id
		}
	}
	return 0
}

// Delete returns the watchpoint with the given id to the free stack.
func (p *WatchpointPool) Delete(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for pos, idx := range p.active {
		if p.slots[idx].id == id {
			p.release(pos)
			return nil
		}
	}
	return &WatchpointError{Err: ErrWatchpointNotFound, ID: id}
}

// DeleteAll frees every active watchpoint and returns how many there were.
func (p *WatchpointPool) DeleteAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.active)
	for len(p.active) > 0 {
		p.release(0)
	}
	return n
}

// release unlinks the active entry at pos. Caller holds p.mu.
func (p *WatchpointPool) release(pos int) {
	idx := p.active[pos]
	p.active = append(p.active[:pos], p.active[pos+1:]...)
	p.used[p.slots[idx].id] = false
	p.slots[idx] = watchSlot{}
	p.free = append(p.free, idx)
}

// List returns the active watchpoints, newest first.
func (p *WatchpointPool) List() []WatchpointInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]WatchpointInfo, 0, len(p.active))
	for _, idx := range p.active {
		s := &p.slots[idx]
		out = append(out, WatchpointInfo{ID: s.id, Expr: s.expr, Value: s.value, OldValue: s.old})
	}
	return out
}

// Len returns the number of active watchpoints.
func (p *WatchpointPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Free returns the number of unused slots.
func (p *WatchpointPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Scan re-evaluates every active watchpoint once. A watchpoint whose
// expression fails to evaluate keeps its values and the scan moves on.
func (p *WatchpointPool) Scan(ev ExprEvaluator) []WatchpointHit {
	p.mu.Lock()
	defer p.mu.Unlock()

	var hits []WatchpointHit
	for _, idx := range p.active {
		s := &p.slots[idx]
		v, err := ev.Evaluate(s.expr)
		if err != nil || v == s.value {
			continue
		}
		hits = append(hits, WatchpointHit{ID: s.id, Expr: s.expr, OldValue: s.value, NewValue: v})
		s.old = s.value
		s.value = v
	}
	return hits
}
