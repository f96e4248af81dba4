package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/D-DEV-JSS/HPAY/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ParseConfig parses and validates a Config from JSON. Struct-tag validation
// covers presence and URL shape; Config.Validate covers the numeric ranges.
func ParseConfig(data []byte) (*types.Config, error) {
	var config types.Config

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse config: %v", err),
		}
	}

	if err := validate.Struct(&config); err != nil {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SerializeConfig converts a Config to JSON.
func SerializeConfig(config *types.Config) ([]byte, error) {
	return json.Marshal(config)
}

// SerializeSettlementResult converts a SettlementResult to JSON.
func SerializeSettlementResult(result *types.SettlementResult) ([]byte, error) {
	return json.Marshal(result)
}

// SerializePaymentSplit converts a PaymentSplit to JSON.
func SerializePaymentSplit(split *types.PaymentSplit) ([]byte, error) {
	return json.Marshal(split)
}
