package tbutil

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	tbtypes "github.com/tigerbeetle/tigerbeetle-go/pkg/types"
)

const (
	operatorAccountLabel = "acct:operator"
	usageAccountPrefix   = "acct:usage:"
	usageTransferPrefix  = "xfer:usage:"
)

// ID128 deterministically maps a string label to a TigerBeetle Uint128,
// steering clear of the reserved all-zero and all-one values.
func ID128(label string) tbtypes.Uint128 {
	sum := sha256.Sum256([]byte(label))
	var raw [16]byte
	copy(raw[:], sum[:16])
	if isZero(raw) || isMax(raw) {
		raw[0] ^= 0x01
	}
	return tbtypes.BytesToUint128(raw)
}

// OperatorAccountID returns the account every usage transfer debits.
func OperatorAccountID() tbtypes.Uint128 {
	return ID128(operatorAccountLabel)
}

// UsageAccountID returns the account tallying one identity's outcome.
func UsageAccountID(identity, outcome string) tbtypes.Uint128 {
	return ID128(usageAccountPrefix + identity + ":" + outcome)
}

// UsageTransferID derives an idempotent transfer ID from an event ID.
func UsageTransferID(eventID string) tbtypes.Uint128 {
	return ID128(usageTransferPrefix + eventID)
}

// Uint128ToUint64 narrows a TigerBeetle Uint128, panicking on overflow.
func Uint128ToUint64(value tbtypes.Uint128) uint64 {
	bytes := value.Bytes()
	high := binary.LittleEndian.Uint64(bytes[8:])
	if high != 0 {
		panic(fmt.Errorf("uint128 overflows uint64"))
	}
	return binary.LittleEndian.Uint64(bytes[:8])
}

func isZero(raw [16]byte) bool {
	for _, b := range raw {
		if b != 0 {
			return false
		}
	}
	return true
}

func isMax(raw [16]byte) bool {
	for _, b := range raw {
		if b != 0xFF {
			return false
		}
	}
	return true
}
