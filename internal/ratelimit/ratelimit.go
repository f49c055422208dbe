package ratelimit

import (
	"fmt"
	"log"
	"sync"
)

// AIBudget caps the number of AI requests a single run may issue, so a
// misbehaving feed cannot burn through API quota.
type AIBudget struct {
	mu               sync.Mutex
	geminiCount      int
	huggingfaceCount int
	maxTotal         int
}

// NewAIBudget creates a budget. maxTotal <= 0 means unlimited.
func NewAIBudget(maxTotal int) *AIBudget {
	return &AIBudget{maxTotal: maxTotal}
}

func (b *AIBudget) CanUse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxTotal > 0 && b.geminiCount+b.huggingfaceCount >= b.maxTotal {
		log.Printf("AI request budget reached (%d/%d)", b.geminiCount+b.huggingfaceCount, b.maxTotal)
		return false
	}
	return true
}

// UseGemini records a Gemini request against the budget.
func (b *AIBudget) UseGemini() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxTotal > 0 && b.geminiCount+b.huggingfaceCount >= b.maxTotal {
		return fmt.Errorf("AI request budget exceeded")
	}
	b.geminiCount++
	log.Printf("AI usage: gemini=%d huggingface=%d total=%d/%d",
		b.geminiCount, b.huggingfaceCount, b.geminiCount+b.huggingfaceCount, b.maxTotal)
	return nil
}

// UseHuggingFace records a Hugging Face inference request against the budget.
func (b *AIBudget) UseHuggingFace() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxTotal > 0 && b.geminiCount+b.huggingfaceCount >= b.maxTotal {
		return fmt.Errorf("AI request budget exceeded")
	}
	b.huggingfaceCount++
	log.Printf("AI usage: gemini=%d huggingface=%d total=%d/%d",
		b.geminiCount, b.huggingfaceCount, b.geminiCount+b.huggingfaceCount, b.maxTotal)
	return nil
}

func (b *AIBudget) Stats() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]int{
		"gemini_used":      b.geminiCount,
		"huggingface_used": b.huggingfaceCount,
		"total_limit":      b.maxTotal,
	}
}
