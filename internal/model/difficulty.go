package model

import (
	"fmt"
	"math/big"
)

// TotalTerminalDifficulty is the total difficulty at which the proof of work chain
// stops producing blocks.
const TotalTerminalDifficulty = "58750000000000000000000"

var totalTerminalDifficulty = func() *big.Float {
	ttd, ok := new(big.Float).SetString(TotalTerminalDifficulty)
	if !ok {
		panic("invalid total terminal difficulty")
	}
	return ttd
}()

// PercentOfTerminalDifficulty returns the percent of the terminal total difficulty
// that a decimal total difficulty represents. Values over the TTD return more than 100.
func PercentOfTerminalDifficulty(totalDifficulty string) (float64, error) {
	td, err := parseDifficulty(totalDifficulty)
	if err != nil {
		return 0, err
	}

	ratio := new(big.Float).Quo(new(big.Float).SetInt(td), totalTerminalDifficulty)
	percent, _ := ratio.Mul(ratio, big.NewFloat(100)).Float64()

	return percent, nil
}

func parseDifficulty(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("difficulty is required: %w", ErrNotValid)
	}

	d, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("difficulty %q is not a decimal integer: %w", s, ErrNotValid)
	}

	if d.Sign() < 0 {
		return nil, fmt.Errorf("difficulty %q cannot be negative: %w", s, ErrNotValid)
	}

	return d, nil
}
