package chain

import (
	"fmt"
	"math/big"
)

var weiPerEther = big.NewInt(1e18)

// FormatEther renders a wei amount in ETH with four decimals.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "unavailable"
	}

	eth := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetInt(weiPerEther),
	)

	return fmt.Sprintf("%.4f ETH (%s wei)", eth, wei.String())
}
