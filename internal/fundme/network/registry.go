package network

import (
	"errors"
	"fmt"
	"slices"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

var (
	ErrUnknownNetwork         = errors.New("unknown network")
	ErrPriceFeedNotConfigured = errors.New("price feed address not configured")
)

type (
	// Descriptor classifies a network and carries its deployment parameters.
	// OracleAddress is nil for development networks.
	Descriptor struct {
		Name          configs.NetworkName
		DisplayName   string
		IsDevelopment bool
		ChainID       uint64
		OracleAddress *common.Address
		Confirmations uint64
		ExplorerURL   string
	}

	// Registry resolves network names against configuration captured at
	// construction time.
	Registry struct {
		development   []configs.NetworkName
		public        map[configs.NetworkName]configs.NetworkParameters
		endpoints     map[configs.NetworkName]configs.Endpoint
		confirmations configs.Confirmations
	}
)

// NewRegistry builds a registry from the loaded configuration.
func NewRegistry(cfg configs.Config) *Registry {
	return &Registry{
		development:   slices.Clone(cfg.DevelopmentChains),
		public:        cfg.Registry,
		endpoints:     cfg.Networks,
		confirmations: cfg.Deploy.Confirmations,
	}
}

// IsDevelopment reports whether name is one of the local chains.
func (r *Registry) IsDevelopment(name configs.NetworkName) bool {
	return lo.Contains(r.development, name)
}

// Resolve returns the descriptor for name. Development networks resolve
// without an oracle so the caller has to supply its fallback.
func (r *Registry) Resolve(name configs.NetworkName) (Descriptor, error) {
	if r.IsDevelopment(name) {
		return Descriptor{
			Name:          name,
			DisplayName:   string(name),
			IsDevelopment: true,
			ChainID:       uint64(r.endpoints[name].ChainID),
			Confirmations: uint64(r.confirmations.Development),
		}, nil
	}

	params, ok := r.public[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: '%s'", ErrUnknownNetwork, name)
	}

	if !common.IsHexAddress(params.PriceFeedAddress) {
		return Descriptor{}, fmt.Errorf("%w for network '%s': %q", ErrPriceFeedNotConfigured, name, params.PriceFeedAddress)
	}
	oracle := common.HexToAddress(params.PriceFeedAddress)

	confirmations := params.Confirmations
	if confirmations == 0 {
		confirmations = r.confirmations.Public
	}

	displayName := params.Name
	if displayName == "" {
		displayName = string(name)
	}

	return Descriptor{
		Name:          name,
		DisplayName:   displayName,
		IsDevelopment: false,
		ChainID:       uint64(params.ChainID),
		OracleAddress: &oracle,
		Confirmations: uint64(confirmations),
		ExplorerURL:   params.ExplorerURL,
	}, nil
}

// Names lists every resolvable network, sorted.
func (r *Registry) Names() []configs.NetworkName {
	names := append(slices.Clone(r.development), lo.Keys(r.public)...)
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}
