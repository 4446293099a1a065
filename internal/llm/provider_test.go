package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/llm"
)

var _ = Describe("Anthropic", func() {
	var (
		server   *httptest.Server
		status   int
		captured map[string]any
		calls    int
	)

	BeforeEach(func() {
		status = http.StatusOK
		calls = 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			Expect(r.URL.Path).To(HaveSuffix("/v1/messages"))
			Expect(r.Header.Get("X-Api-Key")).To(Equal("test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"permission_error","message":"key lacks access"}}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"id": "msg_1", "type": "message", "role": "assistant",
				"model": "claude-3-haiku-20240307",
				"content": [{"type": "text", "text": "  enhanced "}, {"type": "text", "text": "prompt  "}],
				"stop_reason": "end_turn",
				"usage": {"input_tokens": 10, "output_tokens": 20}
			}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newProvider := func() *llm.Anthropic {
		return llm.NewAnthropic(config.LLMConfig{
			Provider: llm.ProviderAnthropic,
			APIKey:   "test-key",
			BaseURL:  server.URL,
			Model:    "claude-3-haiku-20240307",
		})
	}

	It("sends the system field and one user message, then joins text blocks", func() {
		text, err := newProvider().Generate(context.Background(), llm.Request{
			SystemPrompt: "You are an expert prompt engineer",
			UserPrompt:   "make it better",
			Temperature:  0.7,
			MaxTokens:    4096,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("enhanced prompt"))

		Expect(captured["model"]).To(Equal("claude-3-haiku-20240307"))
		Expect(captured["max_tokens"]).To(BeNumerically("==", 4096))
		Expect(captured["temperature"]).To(BeNumerically("~", 0.7, 0.0001))
		Expect(captured["system"]).NotTo(BeNil())
		Expect(captured["messages"]).To(HaveLen(1))
	})

	It("classifies HTTP failures with the status code and does not retry", func() {
		status = http.StatusForbidden

		_, err := newProvider().Generate(context.Background(), llm.Request{UserPrompt: "x"})
		var perr *llm.ProviderError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Provider).To(Equal(llm.ProviderAnthropic))
		Expect(perr.StatusCode).To(Equal(http.StatusForbidden))
		Expect(perr.Forbidden()).To(BeTrue())
		Expect(calls).To(Equal(1))
	})

	It("rejects an empty prompt without a network call", func() {
		_, err := newProvider().Generate(context.Background(), llm.Request{UserPrompt: " "})
		Expect(err).To(MatchError(llm.ErrEmptyPrompt))
		Expect(calls).To(BeZero())
	})
})

var _ = Describe("OpenAI", func() {
	var (
		server   *httptest.Server
		status   int
		captured map[string]any
		calls    int
	)

	BeforeEach(func() {
		status = http.StatusOK
		calls = 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error":{"message":"server exploded","type":"server_error"}}`))
				return
			}
			_, _ = w.Write([]byte(`{
				"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o",
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "\n openapi: 3.0.0 \n"}}],
				"usage": {"prompt_tokens": 15, "completion_tokens": 25, "total_tokens": 40}
			}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newProvider := func() *llm.OpenAI {
		return llm.NewOpenAI(config.LLMConfig{
			Provider: llm.ProviderOpenAI,
			APIKey:   "test-key",
			BaseURL:  server.URL + "/v1/",
			Model:    "gpt-4o",
		})
	}

	It("sends system and user messages and extracts the first choice", func() {
		text, err := newProvider().Generate(context.Background(), llm.Request{
			SystemPrompt: "You are an expert API designer",
			UserPrompt:   "requirements",
			Temperature:  0.2,
			MaxTokens:    4000,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("openapi: 3.0.0"))

		messages, ok := captured["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(2))
		Expect(captured["model"]).To(Equal("gpt-4o"))
		Expect(captured["max_tokens"]).To(BeNumerically("==", 4000))
	})

	It("classifies non-403 failures without marking them forbidden", func() {
		status = http.StatusInternalServerError

		_, err := newProvider().Generate(context.Background(), llm.Request{UserPrompt: "x"})
		var perr *llm.ProviderError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(perr.Forbidden()).To(BeFalse())
		Expect(strings.Contains(err.Error(), "check API key permissions")).To(BeFalse())
		Expect(calls).To(Equal(1))
	})
})

var _ = Describe("New", func() {
	It("requires an API key and names the missing variable", func() {
		_, err := llm.New(config.LLMConfig{Provider: llm.ProviderAnthropic})
		Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("ANTHROPIC_API_KEY"))
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(config.LLMConfig{Provider: "mistral", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("builds only the configured providers", func() {
		providers := llm.NewConfigured(
			config.LLMConfig{Provider: llm.ProviderAnthropic, APIKey: "a"},
			config.LLMConfig{Provider: llm.ProviderOpenAI},
		)
		Expect(providers).To(HaveLen(1))
		Expect(providers).To(HaveKey(llm.ProviderAnthropic))
	})
})
