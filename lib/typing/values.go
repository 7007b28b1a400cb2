package typing

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseJSONNumber keeps integers as int64 and everything else as an exact decimal, floats are never produced.
func ParseJSONNumber(number json.Number) (any, error) {
	value := number.String()
	if !strings.ContainsAny(value, ".eE") {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed, nil
		}
	}

	decimal, _, err := apd.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse number %q: %w", value, err)
	}

	return decimal, nil
}

// ToDriverValue converts a row value into something every database/sql driver in this module can bind.
func ToDriverValue(value any) (any, error) {
	switch castedValue := value.(type) {
	case nil:
		return nil, nil
	case *apd.Decimal:
		if castedValue == nil {
			return nil, nil
		}
		return castedValue.Text('f'), nil
	case apd.Decimal:
		return castedValue.Text('f'), nil
	case *big.Int:
		if castedValue == nil {
			return nil, nil
		}
		return castedValue.String(), nil
	case json.Number:
		return castedValue.String(), nil
	case int:
		return int64(castedValue), nil
	case int32:
		return int64(castedValue), nil
	case float32:
		return float64(castedValue), nil
	case map[string]any, []any:
		bytes, err := jsonAPI.Marshal(castedValue)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %T: %w", value, err)
		}
		return string(bytes), nil
	}

	return value, nil
}
