package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"treasury/domain"
)

// Client signs every transaction with the treasury key. Sends are serialized so the
// pending nonce read by the transactor is never reused.
type Client struct {
	backend *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	timeout time.Duration
	log     zerolog.Logger

	mu sync.Mutex
}

func Dial(ctx context.Context, rpcUrl string, key *ecdsa.PrivateKey, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	backend, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &Client{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		timeout: timeout,
		log:     log,
	}, nil
}

func (client *Client) Close() {
	if client.backend != nil {
		client.backend.Close()
	}
}

func (client *Client) Bind(address common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(address, parsed, client.backend, client.backend, client.backend)
}

func (client *Client) Call(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: client.from}
	if err := contract.Call(opts, &out, method, params...); err != nil {
		return nil, fmt.Errorf("failed to call %v: %w", method, err)
	}
	return out, nil
}

// Send submits a transaction and blocks until it is mined. The hash is recorded on
// the operation's TxLog as soon as the transaction is submitted. Once submitted, a
// transaction whose receipt cannot be obtained is reported as domain.ErrorTxPending,
// never as a plain failure, since it may still be mined.
func (client *Client) Send(ctx context.Context, contract *bind.BoundContract, method string, params ...interface{}) (*types.Receipt, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	opts, err := bind.NewKeyedTransactorWithChainID(client.key, client.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %v: %w", method, err)
	}
	domain.RecordTx(ctx, tx.Hash().Hex())
	client.log.Debug().Str("method", method).Str("hash", tx.Hash().Hex()).Msg("transaction submitted")

	waitCtx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, client.backend, tx)
	if err != nil {
		client.log.Error().Err(err).Str("method", method).Str("hash", tx.Hash().Hex()).Msg("🔴 transaction outcome unknown")
		return nil, pendingError(method, tx.Hash().Hex(), err)
	}
	if err := checkReceipt(receipt); err != nil {
		return receipt, fmt.Errorf("%v %v: %w", method, tx.Hash().Hex(), err)
	}

	return receipt, nil
}

func checkReceipt(receipt *types.Receipt) error {
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return domain.ErrorTxReverted
	}
	return nil
}

func pendingError(method string, hash string, cause error) error {
	return fmt.Errorf("%w: %v %v - %v", domain.ErrorTxPending, method, hash, cause)
}
