package llm

// Task names a pipeline stage that calls a provider.
type Task string

const (
	TaskEnhance Task = "enhance"
	TaskSpecify Task = "specify"
)

// Sampling is the per-provider tuning for a task.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

// Enhancement favors varied rewording; specification favors precision.
var taskSampling = map[Task]map[string]Sampling{
	TaskEnhance: {
		ProviderAnthropic: {Temperature: 0.7, MaxTokens: 4096},
		ProviderOpenAI:    {Temperature: 0.7, MaxTokens: 1000},
	},
	TaskSpecify: {
		ProviderAnthropic: {Temperature: 0.5, MaxTokens: 4096},
		ProviderOpenAI:    {Temperature: 0.2, MaxTokens: 4000},
	},
}

// SamplingFor returns the tuning for task on provider. Unknown pairs fall
// back to the most conservative settings.
func SamplingFor(task Task, provider string) Sampling {
	if byProvider, ok := taskSampling[task]; ok {
		if s, ok := byProvider[provider]; ok {
			return s
		}
	}
	return Sampling{Temperature: 0.2, MaxTokens: 4000}
}

// Compose builds the equivalent request for the given provider. Fallback
// reuses the same prompts with the alternate provider's sampling.
func Compose(task Task, provider, systemPrompt, userPrompt string) Request {
	s := SamplingFor(task, provider)
	return Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  s.Temperature,
		MaxTokens:    s.MaxTokens,
	}
}
