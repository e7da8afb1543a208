package session

import (
	"math/big"
	"strconv"
)

// FormatAddress returns the shortened display form of an address: the first
// six and last four characters joined by an ellipsis. Inputs shorter than ten
// characters are returned unchanged rather than garbled.
func FormatAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// FormatBalance renders a decimal balance string with four decimal places.
// Values below 0.0001, and input that does not parse, render as "0".
func FormatBalance(balance string) string {
	v, err := strconv.ParseFloat(balance, 64)
	if err != nil || v < 0.0001 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// weiToEther converts a wei amount to a decimal ether string.
func weiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	result := new(big.Float).Quo(new(big.Float).SetInt(wei), divisor)

	return result.Text('f', 6)
}
