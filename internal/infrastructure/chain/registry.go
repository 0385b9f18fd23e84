package chain

import (
	"fmt"

	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

// Registry holds the adapter per supported network, selected once at
// startup from configuration.
type Registry struct {
	clients map[domain.Chain]domain.ChainClient
}

func NewRegistry(cfgs []config.ChainConfig) (*Registry, error) {
	clients := make(map[domain.Chain]domain.ChainClient, len(cfgs))

	for _, cfg := range cfgs {
		chain := domain.Chain(cfg.Name)
		if !chain.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedChain, cfg.Name)
		}
		if _, dup := clients[chain]; dup {
			return nil, fmt.Errorf("chain %q configured twice", cfg.Name)
		}

		var (
			client domain.ChainClient
			err    error
		)
		switch chain {
		case domain.ChainTron:
			client, err = NewTronAdapter(cfg)
		default:
			client, err = NewEVMAdapter(cfg)
		}
		if err != nil {
			return nil, err
		}
		clients[chain] = client
	}

	return &Registry{clients: clients}, nil
}

// NewRegistryWithClients wires pre-built adapters; used by tests.
func NewRegistryWithClients(clients ...domain.ChainClient) *Registry {
	m := make(map[domain.Chain]domain.ChainClient, len(clients))
	for _, c := range clients {
		m[c.Chain()] = c
	}
	return &Registry{clients: m}
}

func (r *Registry) Client(chain domain.Chain) (domain.ChainClient, error) {
	client, ok := r.clients[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedChain, chain)
	}
	return client, nil
}

func (r *Registry) Chains() []domain.Chain {
	chains := make([]domain.Chain, 0, len(r.clients))
	for chain := range r.clients {
		chains = append(chains, chain)
	}
	return chains
}
