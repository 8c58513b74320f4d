package internal

import (
	"crypto/sha256"
	"hash/fnv"
	"sync"

	"github.com/riobard/go-bloom"
)

// Defaults for the IV reuse filter.
const (
	DefaultSFCapacity = 1e6
	DefaultSFFPR      = 1e-6
	DefaultSFSlot     = 10
)

// simply use Double FNV here as our Bloom Filter hash
func doubleFNV(b []byte) (uint64, uint64) {
	hx := fnv.New64()
	hx.Write(b)
	x := hx.Sum64()
	hy := fnv.New64a()
	hy.Write(b)
	y := hy.Sum64()
	return x, y
}

// BloomRing is a ring of Bloom filters. Once a slot holds its share of the
// capacity the ring moves on and clears the next slot, so old entries age out.
type BloomRing struct {
	slotCapacity int
	slotPosition int
	slotCount    int
	entryCounter int
	slots        []bloom.Filter
	mutex        sync.RWMutex
}

func NewBloomRing(slot, capacity int, falsePositiveRate float64) *BloomRing {
	if slot <= 0 {
		slot = DefaultSFSlot
	}
	if capacity < slot {
		capacity = slot
	}
	// Calculate entries for each slot
	r := &BloomRing{
		slotCapacity: capacity / slot,
		slotCount:    slot,
		slots:        make([]bloom.Filter, slot),
	}
	for i := 0; i < slot; i++ {
		r.slots[i] = bloom.New(r.slotCapacity, falsePositiveRate, doubleFNV)
	}
	return r
}

func (r *BloomRing) Add(b []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.add(b)
}

func (r *BloomRing) add(b []byte) {
	slot := r.slots[r.slotPosition]
	if r.entryCounter > r.slotCapacity {
		// Move to next slot and reset
		r.slotPosition = (r.slotPosition + 1) % r.slotCount
		slot = r.slots[r.slotPosition]
		slot.Reset()
		r.entryCounter = 0
	}
	r.entryCounter++
	slot.Add(b)
}

func (r *BloomRing) Test(b []byte) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.test(b)
}

func (r *BloomRing) test(b []byte) bool {
	for _, s := range r.slots {
		if s.Test(b) {
			return true
		}
	}
	return false
}

// TestAndAdd reports whether b was probably seen before and records it.
func (r *BloomRing) TestAndAdd(b []byte) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	seen := r.test(b)
	if !seen {
		r.add(b)
	}
	return seen
}

// IVEntry builds the filter entry for an IV used under key. The key is
// hashed so the filter never holds key material.
func IVEntry(key, iv []byte) []byte {
	sum := sha256.Sum256(key)
	return append(sum[:], iv...)
}
