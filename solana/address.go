package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// ValidateAddress checks that addr is a syntactically valid Solana wallet
// address: base58 text decoding to a 32-byte public key.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is empty")
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("address %q is not valid base58: %w", addr, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q decodes to %d bytes, want 32", addr, len(decoded))
	}

	return nil
}
