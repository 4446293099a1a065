package llm_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/llm"
)

type fakeProvider struct {
	name     string
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Model() string { return f.name + "-model" }

func (f *fakeProvider) Generate(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func forbidden(provider string) error {
	return &llm.ProviderError{Provider: provider, StatusCode: 403, Err: errors.New("permission denied")}
}

var _ = Describe("Router", func() {
	var (
		ctx       context.Context
		openai    *fakeProvider
		anthropic *fakeProvider
	)

	BeforeEach(func() {
		ctx = context.Background()
		openai = &fakeProvider{name: llm.ProviderOpenAI, reply: "from openai"}
		anthropic = &fakeProvider{name: llm.ProviderAnthropic, reply: "from anthropic"}
	})

	providers := func(ps ...*fakeProvider) map[string]llm.Provider {
		m := map[string]llm.Provider{}
		for _, p := range ps {
			m[p.name] = p
		}
		return m
	}

	Describe("priority policy", func() {
		It("uses the primary provider when it succeeds", func() {
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			res, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("from openai"))
			Expect(res.Provider).To(Equal(llm.ProviderOpenAI))
			Expect(res.FellBack).To(BeFalse())
			Expect(anthropic.requests).To(BeEmpty())
		})

		It("falls back once on 403 and succeeds with the secondary", func() {
			openai.err = forbidden(llm.ProviderOpenAI)
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			res, err := r.Generate(ctx, llm.TaskEnhance, "sys", "build a todo list API")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).To(Equal("from anthropic"))
			Expect(res.FellBack).To(BeTrue())
			Expect(len(openai.requests) + len(anthropic.requests)).To(Equal(2))
			Expect(anthropic.requests[0].UserPrompt).To(Equal(openai.requests[0].UserPrompt))
			Expect(anthropic.requests[0].SystemPrompt).To(Equal("sys"))
		})

		It("does not fall back on non-403 errors", func() {
			openai.err = &llm.ProviderError{Provider: llm.ProviderOpenAI, StatusCode: 500, Err: errors.New("boom")}
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			_, err := r.Generate(ctx, llm.TaskSpecify, "sys", "user")
			Expect(err).To(HaveOccurred())
			var perr *llm.ProviderError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.StatusCode).To(Equal(500))
			Expect(anthropic.requests).To(BeEmpty())
		})

		It("does not fall back on unclassified errors", func() {
			openai.err = fmt.Errorf("dial tcp: connection refused")
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			_, err := r.Generate(ctx, llm.TaskSpecify, "sys", "user")
			Expect(err).To(MatchError(ContainSubstring("connection refused")))
			Expect(anthropic.requests).To(BeEmpty())
		})

		It("returns a combined error naming both providers when the fallback also fails", func() {
			openai.err = forbidden(llm.ProviderOpenAI)
			anthropic.err = &llm.ProviderError{Provider: llm.ProviderAnthropic, StatusCode: 529, Err: errors.New("overloaded")}
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			_, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			var ferr *llm.FallbackError
			Expect(errors.As(err, &ferr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("openai"))
			Expect(err.Error()).To(ContainSubstring("anthropic"))
			Expect(err.Error()).To(ContainSubstring("overloaded"))
			Expect(len(openai.requests) + len(anthropic.requests)).To(Equal(2))
		})

		It("surfaces a 403 with a permissions hint when no fallback is configured", func() {
			openai.err = forbidden(llm.ProviderOpenAI)
			r := llm.NewRouter(llm.PolicyPriority, providers(openai))

			_, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			Expect(err).To(MatchError(ContainSubstring("check API key permissions")))
			Expect(openai.requests).To(HaveLen(1))
		})

		It("uses the secondary directly when the primary is not configured", func() {
			r := llm.NewRouter(llm.PolicyPriority, providers(anthropic))
			Expect(r.First().Name()).To(Equal(llm.ProviderAnthropic))

			res, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Provider).To(Equal(llm.ProviderAnthropic))
		})

		It("applies the secondary's sampling on fallback", func() {
			openai.err = forbidden(llm.ProviderOpenAI)
			r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

			_, err := r.Generate(ctx, llm.TaskSpecify, "sys", "user")
			Expect(err).NotTo(HaveOccurred())
			Expect(openai.requests[0].Temperature).To(Equal(0.2))
			Expect(anthropic.requests[0].Temperature).To(Equal(0.5))
		})
	})

	Describe("availability policy", func() {
		It("prefers anthropic when configured", func() {
			r := llm.NewRouter(llm.PolicyAvailability, providers(openai, anthropic))

			res, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Provider).To(Equal(llm.ProviderAnthropic))
			Expect(openai.requests).To(BeEmpty())
		})

		It("uses openai when anthropic is absent", func() {
			r := llm.NewRouter(llm.PolicyAvailability, providers(openai))
			Expect(r.First().Name()).To(Equal(llm.ProviderOpenAI))
		})

		It("never falls back", func() {
			anthropic.err = forbidden(llm.ProviderAnthropic)
			r := llm.NewRouter(llm.PolicyAvailability, providers(openai, anthropic))

			_, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
			Expect(err).To(HaveOccurred())
			Expect(openai.requests).To(BeEmpty())
		})
	})

	It("returns a configuration error naming both keys when nothing is configured", func() {
		r := llm.NewRouter(llm.PolicyPriority, providers())

		_, err := r.Generate(ctx, llm.TaskEnhance, "sys", "user")
		Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("ANTHROPIC_API_KEY"))
		Expect(err.Error()).To(ContainSubstring("OPENAI_API_KEY"))
	})

	It("rejects an empty prompt before calling any provider", func() {
		r := llm.NewRouter(llm.PolicyPriority, providers(openai, anthropic))

		_, err := r.Generate(ctx, llm.TaskEnhance, "sys", "   ")
		Expect(err).To(MatchError(llm.ErrEmptyPrompt))
		Expect(openai.requests).To(BeEmpty())
	})
})

var _ = Describe("SamplingFor", func() {
	DescribeTable("per task and provider",
		func(task llm.Task, provider string, temp float64, maxTokens int) {
			s := llm.SamplingFor(task, provider)
			Expect(s.Temperature).To(Equal(temp))
			Expect(s.MaxTokens).To(Equal(maxTokens))
		},
		Entry("enhance anthropic", llm.TaskEnhance, llm.ProviderAnthropic, 0.7, 4096),
		Entry("enhance openai", llm.TaskEnhance, llm.ProviderOpenAI, 0.7, 1000),
		Entry("specify anthropic", llm.TaskSpecify, llm.ProviderAnthropic, 0.5, 4096),
		Entry("specify openai", llm.TaskSpecify, llm.ProviderOpenAI, 0.2, 4000),
		Entry("unknown provider", llm.TaskEnhance, "other", 0.2, 4000),
	)
})
