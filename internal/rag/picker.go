package rag

import (
	"math/rand/v2"
	"sync"
)

// Picker chooses an index in [0, n) for canned responses. n is always > 0.
type Picker interface {
	Pick(n int) int
}

type globalPicker struct{}

func (globalPicker) Pick(n int) int {
	return rand.IntN(n)
}

type seededPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandPicker returns a Picker with its own seeded source, safe for concurrent use.
func NewRandPicker(seed uint64) Picker {
	return &seededPicker{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *seededPicker) Pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.IntN(n)
}
