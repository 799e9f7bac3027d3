package utils

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v2"
)

//go:embed networks.yaml
var networksYAML []byte

var (
	// ErrUnknownNetwork is returned when no table exists for the requested network
	ErrUnknownNetwork = errors.New("unknown network")
)

// Network holds the static token table and recipient list of one chain
type Network struct {
	ID        uint64            `yaml:"id"`
	Name      string            `yaml:"name"`
	Rpc       string            `yaml:"rpc"`
	Testnet   bool              `yaml:"testnet"`
	Contracts map[string]string `yaml:"contracts"`
	Accounts  []string          `yaml:"accounts"`
}

type networkFile struct {
	Networks []Network `yaml:"networks"`
}

// Registry is the set of known networks
type Registry struct {
	byID   map[uint64]Network
	byName map[string]uint64
}

// DefaultRegistry parses the embedded network tables
func DefaultRegistry() (*Registry, error) {
	return ParseNetworks(networksYAML)
}

// ParseNetworks decodes and validates network tables from YAML
func ParseNetworks(data []byte) (*Registry, error) {
	var file networkFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode network tables: %w", err)
	}

	r := &Registry{
		byID:   make(map[uint64]Network, len(file.Networks)),
		byName: make(map[string]uint64, len(file.Networks)),
	}
	for _, n := range file.Networks {
		if err := n.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[n.ID]; ok {
			return nil, fmt.Errorf("duplicate network id %d", n.ID)
		}
		name := strings.ToLower(n.Name)
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("duplicate network name %q", n.Name)
		}
		r.byID[n.ID] = n
		r.byName[name] = n.ID
	}
	return r, nil
}

func (n Network) validate() error {
	if n.ID == 0 {
		return fmt.Errorf("network %q: id must be set", n.Name)
	}
	if n.Name == "" {
		return fmt.Errorf("network %d: name must be set", n.ID)
	}
	if len(n.Contracts) == 0 {
		return fmt.Errorf("network %s: no token contracts", n.Name)
	}
	for symbol, addr := range n.Contracts {
		if !ethcmn.IsHexAddress(addr) {
			return fmt.Errorf("network %s: invalid address %q for %s", n.Name, addr, symbol)
		}
	}
	for _, addr := range n.Accounts {
		if !ethcmn.IsHexAddress(addr) {
			return fmt.Errorf("network %s: invalid account %q", n.Name, addr)
		}
	}
	return nil
}

// Lookup returns the network with the given chain id
func (r *Registry) Lookup(id uint64) (Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return Network{}, fmt.Errorf("%w: %d", ErrUnknownNetwork, id)
	}
	return n, nil
}

// LookupByName resolves a network by name, case-insensitively
func (r *Registry) LookupByName(name string) (Network, error) {
	id, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return r.byID[id], nil
}

// Resolve accepts either a numeric chain id or a network name
func (r *Registry) Resolve(s string) (Network, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		return r.Lookup(id)
	}
	return r.LookupByName(s)
}

// Networks returns all networks ordered by chain id
func (r *Registry) Networks() []Network {
	out := make([]Network, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TokenAddresses maps every symbol of the network to its contract address
func (n Network) TokenAddresses() map[string]ethcmn.Address {
	out := make(map[string]ethcmn.Address, len(n.Contracts))
	for symbol, addr := range n.Contracts {
		out[symbol] = ethcmn.HexToAddress(addr)
	}
	return out
}

// Recipients returns the network's account list in table order
func (n Network) Recipients() []ethcmn.Address {
	out := make([]ethcmn.Address, len(n.Accounts))
	for i, addr := range n.Accounts {
		out[i] = ethcmn.HexToAddress(addr)
	}
	return out
}
