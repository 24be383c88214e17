package etherscan

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressURL links to the verified code tab of address on explorerURL.
func AddressURL(explorerURL string, address common.Address) string {
	if explorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(explorerURL, "/"), address.Hex())
}
