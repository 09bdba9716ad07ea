package solana

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"nightfall/models"
)

// TxReceipt describes a confirmed transfer on the settlement rail
type TxReceipt struct {
	TxHash      string
	Amount      models.Lamports
	ToAddress   string
	ConfirmedAt time.Time
}

// PaymentRail is the boundary to the settlement network. Implementations
// send a transfer and return a receipt, or an error when the transfer could
// not be submitted.
type PaymentRail interface {
	// Send transfers amount to the given address
	Send(ctx context.Context, toAddress string, amount models.Lamports) (*TxReceipt, error)

	// VerifyTransaction reports whether a transaction hash is well formed
	VerifyTransaction(ctx context.Context, txHash string) (bool, error)
}

// MockRail fabricates transaction hashes without touching any network.
// It stands in for a real RPC-backed rail in development and tests.
type MockRail struct{}

func NewMockRail() *MockRail {
	return &MockRail{}
}

// Send always succeeds with a fabricated signature-shaped hash: base58 of 64
// random bytes, the same length as a real Solana transaction signature.
func (r *MockRail) Send(ctx context.Context, toAddress string, amount models.Lamports) (*TxReceipt, error) {
	if err := ValidateAddress(toAddress); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("send amount must be positive, got %d", amount)
	}

	var sig [64]byte
	if _, err := rand.Read(sig[:]); err != nil {
		return nil, fmt.Errorf("failed to generate mock signature: %w", err)
	}

	return &TxReceipt{
		TxHash:      base58.Encode(sig[:]),
		Amount:      amount,
		ToAddress:   toAddress,
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

// VerifyTransaction checks the hash decodes to a 64-byte signature
func (r *MockRail) VerifyTransaction(ctx context.Context, txHash string) (bool, error) {
	decoded, err := base58.Decode(txHash)
	if err != nil {
		return false, nil
	}
	return len(decoded) == 64, nil
}
