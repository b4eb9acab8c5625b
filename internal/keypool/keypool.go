// Package keypool tracks the health of a set of interchangeable API
// credentials, rotating away from failing ones and restoring them after a
// cooldown. It is shared across concurrent requests and safe for concurrent
// use; a single mutex guards the whole pool.
package keypool

import (
	"errors"
	"sync"
	"time"
)

const (
	// MaxFailures is how many consecutive failures block a credential.
	MaxFailures = 3

	// CooldownPeriod is how long a blocked credential stays out of rotation
	// before it becomes eligible again.
	CooldownPeriod = 60 * time.Second
)

// ErrNoCredentials is returned by New when the key list is empty.
var ErrNoCredentials = errors.New("no API credentials configured")

// record tracks the health of one credential. A blocked record always has a
// non-zero lastFailure.
type record struct {
	key         string
	failures    int
	lastFailure time.Time
	blocked     bool
}

// Status is a point-in-time summary of pool health. Available counts records
// that are unblocked or past cooldown.
type Status struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Blocked   int `json:"blocked"`
}

// Pool is the credential pool. Construct once at startup with New and share
// by reference.
type Pool struct {
	mu      sync.Mutex
	records []*record
	cursor  int
	now     func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithClock replaces the pool's time source. Tests use it to advance the
// cooldown without sleeping.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

// New builds a pool over the given credentials. At least one is required.
func New(keys []string, opts ...Option) (*Pool, error) {
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}

	p := &Pool{now: time.Now}
	for _, k := range keys {
		p.records = append(p.records, &record{key: k})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Current returns the credential the pool considers usable right now. If the
// record at the cursor is not viable it scans forward for one that is; if
// none are, it force-revives the record with the oldest failure. The pool
// therefore always returns something: retrying a recently-failed credential
// beats refusing service outright.
func (p *Pool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.viable(p.cursor) {
		if i, ok := p.findViable(); ok {
			p.cursor = i
		} else {
			p.forceReviveOldest()
		}
	}
	return p.records[p.cursor].key
}

// ReportFailure records a failure against the current credential, blocking
// it once it reaches MaxFailures, and advances the cursor to the next viable
// record.
func (p *Pool) ReportFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.records[p.cursor]
	r.failures++
	r.lastFailure = p.now()
	if r.failures >= MaxFailures {
		r.blocked = true
	}

	p.rotate()
}

// ReportSuccess clears the failure history of the current credential.
func (p *Pool) ReportSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.records[p.cursor]
	r.failures = 0
	r.lastFailure = time.Time{}
}

// Status reports pool health for monitoring endpoints.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{Total: len(p.records)}
	for i, r := range p.records {
		if p.viable(i) {
			s.Available++
		}
		if r.blocked {
			s.Blocked++
		}
	}
	return s
}

// viable reports whether record i can be handed out. A blocked record whose
// cooldown has elapsed is reset in place and becomes viable again.
// Caller must hold p.mu.
func (p *Pool) viable(i int) bool {
	r := p.records[i]
	if !r.blocked {
		return true
	}
	if p.now().Sub(r.lastFailure) > CooldownPeriod {
		r.failures = 0
		r.blocked = false
		r.lastFailure = time.Time{}
		return true
	}
	return false
}

// findViable scans forward from the cursor and returns the first viable
// record's index. Caller must hold p.mu.
func (p *Pool) findViable() (int, bool) {
	for off := 0; off < len(p.records); off++ {
		i := (p.cursor + off) % len(p.records)
		if p.viable(i) {
			return i, true
		}
	}
	return 0, false
}

// rotate advances the cursor to the next viable record after the current
// one, force-reviving if every record is blocked. Caller must hold p.mu.
func (p *Pool) rotate() {
	for off := 1; off < len(p.records); off++ {
		i := (p.cursor + off) % len(p.records)
		if p.viable(i) {
			p.cursor = i
			return
		}
	}
	if !p.viable(p.cursor) {
		p.forceReviveOldest()
	}
}

// forceReviveOldest resets the record with the oldest failure and points the
// cursor at it. This is a liveness-over-safety tradeoff: when every
// credential is blocked the pool optimistically retries the one that failed
// longest ago rather than rejecting the request. Swapping the policy means
// swapping this method. Caller must hold p.mu.
func (p *Pool) forceReviveOldest() {
	oldest := 0
	for i := 1; i < len(p.records); i++ {
		if p.records[i].lastFailure.Before(p.records[oldest].lastFailure) {
			oldest = i
		}
	}

	r := p.records[oldest]
	r.failures = 0
	r.blocked = false
	r.lastFailure = time.Time{}
	p.cursor = oldest
}
