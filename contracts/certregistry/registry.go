// Package certregistry binds the on-chain credential registry contract.
//
// The wrapper is maintained by hand over bind.BoundContract rather than
// regenerated with abigen; the contract surface is three methods and the
// hand-rolled binding keeps the module free of generated churn.
package certregistry

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RegistryABI is the input ABI of the CredentialRegistry contract.
const RegistryABI = `[
  {"type":"function","name":"issueCredential","stateMutability":"nonpayable",
   "inputs":[{"name":"credentialId","type":"string"},{"name":"title","type":"string"},
             {"name":"trackId","type":"string"},{"name":"owner","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"revokeCredential","stateMutability":"nonpayable",
   "inputs":[{"name":"credentialId","type":"string"}],"outputs":[]},
  {"type":"function","name":"getCredential","stateMutability":"view",
   "inputs":[{"name":"credentialId","type":"string"}],
   "outputs":[{"name":"title","type":"string"},{"name":"trackId","type":"string"},
              {"name":"owner","type":"address"},{"name":"issuedAt","type":"uint256"},
              {"name":"revoked","type":"bool"},{"name":"exists","type":"bool"}]}
]`

// Credential mirrors the on-chain credential tuple.
type Credential struct {
	Title    string
	TrackID  string
	Owner    common.Address
	IssuedAt *big.Int
	Revoked  bool
	Exists   bool
}

// Registry wraps a deployed CredentialRegistry contract instance.
type Registry struct {
	contract *bind.BoundContract
}

// NewRegistry binds a registry instance at the given address.
func NewRegistry(address common.Address, backend bind.ContractBackend) (*Registry, error) {
	parsed, err := abi.JSON(strings.NewReader(RegistryABI))
	if err != nil {
		return nil, err
	}
	return &Registry{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// IssueCredential records a credential on chain. The transaction must still
// be mined before the credential is considered anchored.
func (r *Registry) IssueCredential(opts *bind.TransactOpts, credentialID, title, trackID string, owner common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "issueCredential", credentialID, title, trackID, owner)
}

// RevokeCredential flags a credential as revoked on chain.
func (r *Registry) RevokeCredential(opts *bind.TransactOpts, credentialID string) (*types.Transaction, error) {
	return r.contract.Transact(opts, "revokeCredential", credentialID)
}

// GetCredential reads the credential tuple for an ID. Exists is false for
// unknown IDs; the contract does not revert on missing credentials.
func (r *Registry) GetCredential(opts *bind.CallOpts, credentialID string) (Credential, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getCredential", credentialID); err != nil {
		return Credential{}, err
	}
	return Credential{
		Title:    *abi.ConvertType(out[0], new(string)).(*string),
		TrackID:  *abi.ConvertType(out[1], new(string)).(*string),
		Owner:    *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		IssuedAt: abi.ConvertType(out[3], new(big.Int)).(*big.Int),
		Revoked:  *abi.ConvertType(out[4], new(bool)).(*bool),
		Exists:   *abi.ConvertType(out[5], new(bool)).(*bool),
	}, nil
}
