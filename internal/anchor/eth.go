package anchor

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"certo/contracts/certregistry"
	"certo/internal/platform/config"
	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/sentinel"
)

// EthClient anchors credentials on an Ethereum-compatible chain through the
// CredentialRegistry contract.
//
// Every issue call waits for the transaction to be mined, bounded by the
// configured confirmation timeout; a timeout surfaces as a retryable
// unavailable error and the orchestrator mints a fresh credential ID on the
// next attempt rather than resubmitting this one.
type EthClient struct {
	client         *ethclient.Client
	registry       *certregistry.Registry
	key            *ecdsa.PrivateKey
	chainID        *big.Int
	confirmTimeout time.Duration
	logger         *slog.Logger
}

// NewEthClient dials the RPC endpoint and binds the registry contract.
func NewEthClient(ctx context.Context, cfg config.AnchorConfig, logger *slog.Logger) (*EthClient, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "dial anchor rpc")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read chain id")
	}

	key, err := crypto.HexToECDSA(cfg.PrivateKeyHex)
	if err != nil {
		client.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "parse anchor private key")
	}

	registry, err := certregistry.NewRegistry(common.HexToAddress(cfg.ContractAddress), client)
	if err != nil {
		client.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "bind registry contract")
	}

	return &EthClient{
		client:         client,
		registry:       registry,
		key:            key,
		chainID:        chainID,
		confirmTimeout: cfg.ConfirmTimeout,
		logger:         logger,
	}, nil
}

// WalletAddress returns the service wallet used as credential owner.
func (c *EthClient) WalletAddress() string {
	return crypto.PubkeyToAddress(c.key.PublicKey).Hex()
}

func (c *EthClient) IssueCredential(ctx context.Context, credentialID, title, trackID, owner string) (*Receipt, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build transactor")
	}
	opts.Context = ctx

	ownerAddr := common.HexToAddress(owner)
	tx, err := c.registry.IssueCredential(opts, credentialID, title, trackID, ownerAddr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "submit anchor transaction")
	}
	return c.awaitReceipt(ctx, tx)
}

func (c *EthClient) RevokeCredential(ctx context.Context, credentialID string) (*Receipt, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build transactor")
	}
	opts.Context = ctx

	tx, err := c.registry.RevokeCredential(opts, credentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "submit revoke transaction")
	}
	return c.awaitReceipt(ctx, tx)
}

func (c *EthClient) GetCredential(ctx context.Context, credentialID string) (*Record, error) {
	cred, err := c.registry.GetCredential(&bind.CallOpts{Context: ctx}, credentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read credential")
	}
	if !cred.Exists {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "credential not anchored")
	}
	return &Record{
		CredentialID: credentialID,
		Title:        cred.Title,
		TrackID:      cred.TrackID,
		Owner:        cred.Owner.Hex(),
		IssuedAt:     time.Unix(cred.IssuedAt.Int64(), 0).UTC(),
		Revoked:      cred.Revoked,
	}, nil
}

// awaitReceipt blocks until the transaction is mined or the confirmation
// timeout elapses. Submission without confirmation is not an anchor.
func (c *EthClient) awaitReceipt(ctx context.Context, tx *types.Transaction) (*Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.client, tx)
	if err != nil {
		c.logger.ErrorContext(ctx, "anchor confirmation failed",
			"tx_hash", tx.Hash().Hex(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "await anchor confirmation")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, dErrors.New(dErrors.CodeUnavailable, "anchor transaction reverted")
	}
	return &Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		AnchoredAt:  time.Now().UTC(),
	}, nil
}

// Close releases the underlying RPC connection.
func (c *EthClient) Close() {
	c.client.Close()
}
