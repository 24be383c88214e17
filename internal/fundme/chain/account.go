package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is the signing identity of a run.
type Account struct {
	Address    common.Address
	privateKey *ecdsa.PrivateKey
}

// ParseAccount accepts a hex private key with or without 0x prefix.
func ParseAccount(privateKeyHex string) (Account, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if trimmed == "" {
		return Account{}, fmt.Errorf("private key is empty")
	}

	privateKey, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return Account{}, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return Account{}, fmt.Errorf("failed to cast public key to ECDSA")
	}

	return Account{
		Address:    crypto.PubkeyToAddress(*publicKey),
		privateKey: privateKey,
	}, nil
}

// Transactor returns fresh signing options bound to chainID.
func (a Account) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	if a.privateKey == nil {
		return nil, fmt.Errorf("account %s has no private key", a.Address.Hex())
	}

	auth, err := bind.NewKeyedTransactorWithChainID(a.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return auth, nil
}
