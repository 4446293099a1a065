package service

import (
	"sort"

	"voyager.app/generator/internal/llm"
)

// ProviderInfo describes which text-generation provider runs first.
type ProviderInfo struct {
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Fallback   string     `json:"fallback,omitempty"`
	Policy     llm.Policy `json:"policy"`
	Configured []string   `json:"configured"`
}

type ProviderService interface {
	Info() ProviderInfo
}

type providerService struct {
	router    *llm.Router
	providers map[string]llm.Provider
	policy    llm.Policy
}

func NewProviderService(router *llm.Router, policy llm.Policy, providers map[string]llm.Provider) ProviderService {
	return &providerService{router: router, policy: policy, providers: providers}
}

// Info reports "none" when no provider key is configured.
func (s *providerService) Info() ProviderInfo {
	info := ProviderInfo{Provider: "none", Policy: s.policy, Configured: []string{}}
	for name := range s.providers {
		info.Configured = append(info.Configured, name)
	}
	sort.Strings(info.Configured)

	first, fallback := s.router.Plan()
	if first != nil {
		info.Provider = first.Name()
		info.Model = first.Model()
	}
	if fallback != nil {
		info.Fallback = fallback.Name()
	}
	return info
}
