// Package idhash produces deterministic identifiers for ledger rows.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeTxHash computes a deterministic simulated transaction hash for a
// trade. Formula: SHA256(token_id|trader_id|type|timestamp_ms|sequence),
// base58-encoded so it reads like a chain signature. The sequence
// disambiguates trades landing on the same millisecond.
func ComputeTxHash(tokenID, traderID, tradeType string, timestampMs int64, sequence uint64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d",
		tokenID,
		traderID,
		tradeType,
		timestampMs,
		sequence,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
