// Package stats maintains the rolling diagnostics of a running simulation:
// mean squared displacement with a fitted slope, velocity autocorrelation
// over a lag range, and the polar order parameter.
package stats

import "github.com/jfet97/petri/physics"

// Sample is one observation tagged with the tick it was taken.
type Sample struct {
	Tick  int64
	Value float64
}

// Ring is a fixed-capacity sample buffer that overwrites its oldest entry
// once full, keeping memory flat over arbitrarily long runs.
type Ring struct {
	buf   []Sample
	write int
	count int
}

// NewRing allocates a ring holding up to cap samples.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]Sample, capacity)}
}

// Push appends a sample, evicting the oldest when the ring is full.
func (r *Ring) Push(s Sample) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.write] = s
	r.write = (r.write + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of stored samples.
func (r *Ring) Len() int {
	return r.count
}

// Last returns the most recent sample and false when the ring is empty.
func (r *Ring) Last() (Sample, bool) {
	if r.count == 0 {
		return Sample{}, false
	}
	return r.buf[(r.write-1+len(r.buf))%len(r.buf)], true
}

// AppendOrdered appends up to max of the newest samples to dst in
// oldest-first order and returns dst. max <= 0 means all of them.
func (r *Ring) AppendOrdered(dst []Sample, max int) []Sample {
	n := r.count
	if max > 0 && max < n {
		n = max
	}
	start := r.write - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		dst = append(dst, r.buf[(start+i)%len(r.buf)])
	}
	return dst
}

// VecRing is a fixed-capacity vector history, used for per-agent velocity
// trails feeding the autocorrelation estimator.
type VecRing struct {
	buf   []physics.Vec
	write int
	count int
}

// NewVecRing allocates a vector ring holding up to cap entries.
func NewVecRing(capacity int) *VecRing {
	return &VecRing{buf: make([]physics.Vec, capacity)}
}

// Push appends a vector, evicting the oldest when full.
func (r *VecRing) Push(v physics.Vec) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.write] = v
	r.write = (r.write + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of stored vectors.
func (r *VecRing) Len() int {
	return r.count
}

// At returns the i-th stored vector in oldest-first order.
func (r *VecRing) At(i int) physics.Vec {
	start := r.write - r.count
	if start < 0 {
		start += len(r.buf)
	}
	return r.buf[(start+i)%len(r.buf)]
}
