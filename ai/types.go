package ai

// Completion providers understood by Config.CompletionProvider.
const (
	// ProviderOpenAI talks to any OpenAI-compatible chat API (Groq, Ollama, vLLM, OpenAI).
	ProviderOpenAI = "openai"

	// ProviderAnthropic talks to the Anthropic Messages API.
	ProviderAnthropic = "anthropic"
)

// Providers lists every supported completion provider.
var Providers = []string{
	ProviderOpenAI,
	ProviderAnthropic,
}

// NoAPIKey is sent as the bearer token to local OpenAI-compatible services
// that do not require authentication.
const NoAPIKey = "none"
