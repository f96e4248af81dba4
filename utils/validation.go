package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks that an amount string is a valid non-negative
// decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateAddress performs shape checks on a Hacash address string. The core
// treats addresses as opaque identities; this only rejects obviously broken
// input before it reaches the ledger.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if strings.TrimSpace(address) != address {
		return fmt.Errorf("address has surrounding whitespace")
	}

	if strings.ContainsAny(address, " \t\n") {
		return fmt.Errorf("address contains whitespace")
	}

	if len(address) < 20 || len(address) > 64 {
		return fmt.Errorf("address length %d out of range", len(address))
	}

	return nil
}
