package config

import (
	"sort"
	"strings"
)

// SourceKind identifies where the media to process comes from.
type SourceKind string

const (
	SourceVideo    SourceKind = "video"
	SourcePlaylist SourceKind = "playlist"
	SourceURLs     SourceKind = "urls"
	SourceFile     SourceKind = "file"
	SourceRSS      SourceKind = "rss"
)

// SourceKinds lists every accepted source in CLI flag order.
var SourceKinds = []SourceKind{SourceVideo, SourcePlaylist, SourceURLs, SourceFile, SourceRSS}

// TranscriptionKind is the tag of the transcription backend variant.
type TranscriptionKind string

const (
	TranscriptionWhisper            TranscriptionKind = "whisper"
	TranscriptionWhisperDocker      TranscriptionKind = "whisperDocker"
	TranscriptionWhisperPython      TranscriptionKind = "whisperPython"
	TranscriptionWhisperDiarization TranscriptionKind = "whisperDiarization"
	TranscriptionDeepgram           TranscriptionKind = "deepgram"
	TranscriptionAssembly           TranscriptionKind = "assembly"
)

// TranscriptionKinds lists every transcription backend in CLI flag order.
var TranscriptionKinds = []TranscriptionKind{
	TranscriptionWhisper,
	TranscriptionWhisperDocker,
	TranscriptionWhisperPython,
	TranscriptionWhisperDiarization,
	TranscriptionDeepgram,
	TranscriptionAssembly,
}

// LLMProvider is the tag of the language model backend variant.
type LLMProvider string

const (
	LLMChatGPT   LLMProvider = "chatgpt"
	LLMClaude    LLMProvider = "claude"
	LLMGemini    LLMProvider = "gemini"
	LLMCohere    LLMProvider = "cohere"
	LLMMistral   LLMProvider = "mistral"
	LLMFireworks LLMProvider = "fireworks"
	LLMTogether  LLMProvider = "together"
	LLMGroq      LLMProvider = "groq"
	LLMOllama    LLMProvider = "ollama"
)

// LLMProviders lists every language model backend in CLI flag order.
var LLMProviders = []LLMProvider{
	LLMChatGPT, LLMClaude, LLMGemini, LLMCohere, LLMMistral,
	LLMFireworks, LLMTogether, LLMGroq, LLMOllama,
}

// whisperModels maps accepted whisper model names to ggml model names.
var whisperModels = map[string]string{
	"tiny":           "tiny",
	"tiny.en":        "tiny.en",
	"base":           "base",
	"base.en":        "base.en",
	"small":          "small",
	"small.en":       "small.en",
	"medium":         "medium",
	"medium.en":      "medium.en",
	"large-v1":       "large-v1",
	"large-v2":       "large-v2",
	"large-v3-turbo": "large-v3-turbo",
	"turbo":          "large-v3-turbo",
}

var assemblyModels = map[string]bool{
	"best":      true,
	"nano":      true,
	"slam-1":    true,
	"universal": true,
}

// DefaultTranscriptionModel returns the model used when a backend flag is given without a value.
func DefaultTranscriptionModel(kind TranscriptionKind) string {
	switch kind {
	case TranscriptionDeepgram:
		return "nova-2"
	case TranscriptionAssembly:
		return "best"
	default:
		return "base"
	}
}

// IsWhisper reports whether kind runs a local whisper variant.
func (k TranscriptionKind) IsWhisper() bool {
	switch k {
	case TranscriptionWhisper, TranscriptionWhisperDocker, TranscriptionWhisperPython, TranscriptionWhisperDiarization:
		return true
	}
	return false
}

// ResolveWhisperModel maps a user supplied model name to its ggml name.
func ResolveWhisperModel(name string) (string, bool) {
	m, ok := whisperModels[strings.TrimSpace(name)]
	return m, ok
}

// WhisperModelNames returns the accepted whisper model names, sorted.
func WhisperModelNames() []string {
	names := make([]string, 0, len(whisperModels))
	for k := range whisperModels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultLLMModel returns the model used when a provider flag is given without a value.
func DefaultLLMModel(p LLMProvider) string {
	switch p {
	case LLMChatGPT:
		return "gpt-4o-mini"
	case LLMClaude:
		return "claude-3-5-haiku-latest"
	case LLMGemini:
		return "gemini-1.5-flash"
	case LLMCohere:
		return "command-r"
	case LLMMistral:
		return "mistral-small-latest"
	case LLMFireworks:
		return "accounts/fireworks/models/llama-v3p1-8b-instruct"
	case LLMTogether:
		return "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"
	case LLMGroq:
		return "llama-3.1-8b-instant"
	case LLMOllama:
		return "llama3.2:1b"
	}
	return ""
}

// LLMCredentialVariable returns the environment variable holding the provider's API key.
// Ollama runs locally and needs none.
func LLMCredentialVariable(p LLMProvider) string {
	switch p {
	case LLMChatGPT:
		return "OPENAI_API_KEY"
	case LLMClaude:
		return "ANTHROPIC_API_KEY"
	case LLMGemini:
		return "GEMINI_API_KEY"
	case LLMCohere:
		return "COHERE_API_KEY"
	case LLMMistral:
		return "MISTRAL_API_KEY"
	case LLMFireworks:
		return "FIREWORKS_API_KEY"
	case LLMTogether:
		return "TOGETHER_API_KEY"
	case LLMGroq:
		return "GROQ_API_KEY"
	}
	return ""
}

// TranscriptionCredentialVariable returns the environment variable holding the backend's API key.
func TranscriptionCredentialVariable(k TranscriptionKind) string {
	switch k {
	case TranscriptionDeepgram:
		return "DEEPGRAM_API_KEY"
	case TranscriptionAssembly:
		return "ASSEMBLY_API_KEY"
	}
	return ""
}
