package llm

import (
	"sync/atomic"

	"github.com/llmrouter/core/llm/observability"
	"github.com/llmrouter/core/llm/tokenizer"
)

// costScale converts between USD (float64) and the atomic counter's unit,
// micro-USD, avoiding float CAS loops on the hot path.
const costScale = 1_000_000

// CostAccumulator is the orchestrator's single running cost total, held as
// one atomic counter per spec's "Cost counter is a single atomic" resource
// rule. It also computes a call's cost when the provider didn't report one,
// falling back to observability's built-in price table when a binding
// carries no explicit PriceTable.
type CostAccumulator struct {
	microUSD atomic.Int64
	fallback *observability.CostCalculator
}

// NewCostAccumulator creates an accumulator starting at zero.
func NewCostAccumulator() *CostAccumulator {
	return &CostAccumulator{fallback: observability.NewCostCalculator()}
}

// Compute derives costUSD for a response that didn't report one:
// tokens.input/1000*inputPer1K + tokens.output/1000*outputPer1K. If the
// binding's price table is entirely zero, falls back to the built-in price
// table keyed by provider:model.
func (a *CostAccumulator) Compute(b Binding, tokens TokenCounts) float64 {
	price := b.Price
	if price.InputPer1K == 0 && price.OutputPer1K == 0 {
		if p := a.fallback.GetPrice(b.ProviderKey, b.Model); p != nil {
			price = PriceTable{InputPer1K: p.PriceInput, OutputPer1K: p.PriceOutput}
		}
	}
	return float64(tokens.Input)/1000*price.InputPer1K + float64(tokens.Output)/1000*price.OutputPer1K
}

// EstimateTokens counts prompt and completion tokens for a call whose
// provider didn't report usage, using the model's registered tokenizer
// (falling back to a generic estimator — see tokenizer.GetTokenizerOrEstimator).
func EstimateTokens(model string, messages []Message, completion string) TokenCounts {
	t := tokenizer.GetTokenizerOrEstimator(model)

	tmsgs := make([]tokenizer.Message, len(messages))
	for i, m := range messages {
		tmsgs[i] = tokenizer.Message{Role: string(m.Role), Content: m.Content}
	}
	input, _ := t.CountMessages(tmsgs)
	output, _ := t.CountTokens(completion)
	return TokenCounts{Input: input, Output: output}
}

// Add adds costUSD to the running total and returns the new total.
func (a *CostAccumulator) Add(costUSD float64) float64 {
	delta := int64(costUSD * costScale)
	return float64(a.microUSD.Add(delta)) / costScale
}

// Total returns the current running total in USD.
func (a *CostAccumulator) Total() float64 {
	return float64(a.microUSD.Load()) / costScale
}
