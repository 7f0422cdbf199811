package llm

// EstimateCost returns the estimated USD cost of a call given the model's
// per-1K pricing. Unknown pricing estimates to zero rather than guessing.
func EstimateCost(m ModelDescriptor, inputTokens, outputTokens int) float64 {
	if m.InputCostPer1K == 0 && m.OutputCostPer1K == 0 {
		return 0
	}
	return float64(inputTokens)/1000*m.InputCostPer1K +
		float64(outputTokens)/1000*m.OutputCostPer1K
}
