package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostAccumulator_ComputeUsesBindingPrice(t *testing.T) {
	t.Parallel()

	a := NewCostAccumulator()
	b := Binding{ProviderKey: "x", Model: "m", Price: PriceTable{InputPer1K: 0.01, OutputPer1K: 0.03}}

	cost := a.Compute(b, TokenCounts{Input: 1000, Output: 500})
	assert.InDelta(t, 0.025, cost, 1e-9)
}

func TestCostAccumulator_ComputeFallsBackToBuiltInPrice(t *testing.T) {
	t.Parallel()

	a := NewCostAccumulator()
	b := Binding{ProviderKey: "openai", Model: "gpt-4o"}

	cost := a.Compute(b, TokenCounts{Input: 1000, Output: 500})
	assert.Greater(t, cost, 0.0)
}

func TestCostAccumulator_AddIsMonotonicAndConcurrencySafe(t *testing.T) {
	t.Parallel()

	a := NewCostAccumulator()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Add(0.01)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 1.0, a.Total(), 1e-6)
}
