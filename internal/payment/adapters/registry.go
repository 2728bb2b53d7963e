package adapters

import (
	"strings"

	"go.uber.org/fx"

	"github.com/wordhaven/creditledger/internal/payment/domain"
)

type Registry struct {
	adapters map[string]domain.ProviderAdapter
}

type RegistryParams struct {
	fx.In

	Adapters []domain.ProviderAdapter `group:"payment_adapters"`
}

func NewRegistry(p RegistryParams) *Registry {
	registry := &Registry{adapters: map[string]domain.ProviderAdapter{}}
	for _, adapter := range p.Adapters {
		if adapter == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(adapter.Name()))
		if name == "" {
			continue
		}
		registry.adapters[name] = adapter
	}
	return registry
}

func (r *Registry) Get(provider string) (domain.ProviderAdapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(provider))]
	return adapter, ok
}
