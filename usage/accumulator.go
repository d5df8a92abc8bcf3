// Package usage accumulates token counts reported by the completion API.
package usage

import (
	"sort"
	"sync"
)

// ModelCost is the USD price per million tokens (input/output)
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

var ModelCosts = map[string]ModelCost{
	"gpt-4o-mini":  {0.15, 0.60},
	"gpt-4o":       {2.50, 10.0},
	"gpt-4.1-mini": {0.40, 1.60},
}

type ModelTokens struct {
	Model         string  `json:"model"`
	Requests      int     `json:"requests"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost_usd"`
}

type Summary struct {
	TotalRequests   int           `json:"total_requests"`
	TotalTokens     int           `json:"total_tokens"`
	TotalCost       float64       `json:"total_cost_usd"`
	Models          []ModelTokens `json:"models"`
	BudgetLimit     int           `json:"budget_limit"`
	BudgetUsed      int           `json:"budget_used"`
	BudgetRemaining int           `json:"budget_remaining"`
}

// BudgetWarningCallback fires when total usage crosses 80% and 100% of the budget
type BudgetWarningCallback func(model string, budget, used, remaining int)

type Accumulator struct {
	models   map[string]*ModelTokens
	total    ModelTokens
	budget   int // 0 = no budget
	callback BudgetWarningCallback
	mu       sync.RWMutex
}

func NewAccumulator(budget int, callback BudgetWarningCallback) *Accumulator {
	return &Accumulator{
		models:   make(map[string]*ModelTokens),
		budget:   budget,
		callback: callback,
	}
}

// Record adds one completion's token counts. The callback runs after the
// lock is released so it may call back into the accumulator.
func (a *Accumulator) Record(model string, inputTokens, outputTokens int) {
	a.mu.Lock()

	cost := EstimateCost(model, inputTokens, outputTokens)

	m, ok := a.models[model]
	if !ok {
		m = &ModelTokens{Model: model}
		a.models[model] = m
	}

	m.Requests++
	m.InputTokens += inputTokens
	m.OutputTokens += outputTokens
	m.TotalTokens = m.InputTokens + m.OutputTokens
	m.EstimatedCost += cost

	a.total.Requests++
	a.total.InputTokens += inputTokens
	a.total.OutputTokens += outputTokens
	a.total.TotalTokens = a.total.InputTokens + a.total.OutputTokens
	a.total.EstimatedCost += cost

	var warnings int
	used := a.total.TotalTokens
	remaining := a.budget - used
	if remaining < 0 {
		remaining = 0
	}
	if a.budget > 0 && a.callback != nil {
		threshold80 := int(float64(a.budget) * 0.8)
		prev := used - inputTokens - outputTokens
		if prev < threshold80 && used >= threshold80 {
			warnings++
		}
		if prev < a.budget && used >= a.budget {
			warnings++
		}
	}
	callback, budget := a.callback, a.budget
	a.mu.Unlock()

	for i := 0; i < warnings; i++ {
		callback(model, budget, used, remaining)
	}
}

// GetModel returns a copy of one model's totals
func (a *Accumulator) GetModel(model string) (*ModelTokens, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.models[model]
	if !ok {
		return nil, false
	}
	copy := *m
	return &copy, true
}

// Summary returns totals with models sorted by name
func (a *Accumulator) Summary() Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	models := make([]ModelTokens, 0, len(a.models))
	for _, m := range a.models {
		models = append(models, *m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Model < models[j].Model })

	used := a.total.TotalTokens
	remaining := a.budget - used
	if remaining < 0 {
		remaining = 0
	}

	return Summary{
		TotalRequests:   a.total.Requests,
		TotalTokens:     a.total.TotalTokens,
		TotalCost:       a.total.EstimatedCost,
		Models:          models,
		BudgetLimit:     a.budget,
		BudgetUsed:      used,
		BudgetRemaining: remaining,
	}
}

// EstimateCost returns 0 for models missing from ModelCosts
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	cost, ok := ModelCosts[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1_000_000)*cost.InputPerMTok +
		(float64(outputTokens)/1_000_000)*cost.OutputPerMTok
}
