package chain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// IsRevert reports whether err carries an EVM revert, either from gas
// estimation or from an eth_call.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
