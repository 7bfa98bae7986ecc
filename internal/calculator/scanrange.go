package calculator

import "errors"

// ScanRange returns the price band current ± multiple*atr that a scan
// considers for confluence.
func ScanRange(currentPrice, atr, multiple float64) (low, high float64, err error) {
	if currentPrice <= 0 {
		return 0, 0, errors.New("current price must be positive")
	}
	if atr < 0 {
		return 0, 0, errors.New("atr must be non-negative")
	}
	if multiple <= 0 {
		return 0, 0, errors.New("multiple must be positive")
	}
	return currentPrice - multiple*atr, currentPrice + multiple*atr, nil
}
