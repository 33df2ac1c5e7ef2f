package openrouter

// ChatMessage is a single message in a chat-completion conversation
type ChatMessage struct {
	// Role is who sent the message: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatRequest contains all parameters for a chat-completion call
type ChatRequest struct {
	// Model is the OpenRouter model identifier (e.g. "deepseek/deepseek-r1-distill-llama-70b")
	Model string `json:"model"`

	// Messages is the full conversation to send
	Messages []ChatMessage `json:"messages"`

	// MaxTokens limits the maximum response length.
	// Set to 0 to use the client default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64 `json:"temperature,omitempty"`
}

// Usage reports token consumption for a completed call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the outcome of a chat-completion call.
// Provider-reported errors and transport faults are carried in Err rather
// than raised, so callers decide how a failed completion propagates.
type ChatResponse struct {
	// Content is the assistant reply text
	Content string `json:"content"`

	// Model is the model that produced the reply
	Model string `json:"model"`

	// Usage reports token counts when the provider returned them
	Usage Usage `json:"usage"`

	// OK is true when the call produced usable content
	OK bool `json:"ok"`

	// Err describes the failure when OK is false
	Err string `json:"error,omitempty"`
}

// ModelInfo describes one model from the OpenRouter catalog
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Wire structures for the OpenRouter chat-completions endpoint

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage          `json:"usage"`
	Error *providerError `json:"error,omitempty"`
}

type providerError struct {
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"`
}

type modelListResponse struct {
	Data []ModelInfo `json:"data"`
}
