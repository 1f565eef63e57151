package llm

const (
	mockRelevanceScore = 0.5

	// rerankTemperature keeps the model deterministic enough that repeated
	// runs over the same asset stay comparable.
	rerankTemperature = 0.1

	rateLimiterBurst = 5
)
