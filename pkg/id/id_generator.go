package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces opaque, globally unique tokens for transaction rows
// and transfer groups. ULIDs are sortable and collision-resistant, which
// makes them usable both as receipt lookup keys and as correlation keys.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *Generator) generate(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return prefix + "_" + ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// TransactionID generates a token for a single transaction row.
// Format: txn_01ARZ3NDEKTSV4RRFFQ69G5FAV
func (g *Generator) TransactionID() string {
	return g.generate("txn")
}

// TransferGroupID generates the token shared by the send/receive pair of
// one transfer.
// Format: tfr_01ARZ3NDEKTSV4RRFFQ69G5FAV
func (g *Generator) TransferGroupID() string {
	return g.generate("tfr")
}

// ValidTransactionID reports whether s looks like a generated transaction
// token.
func ValidTransactionID(s string) bool {
	rest, ok := strings.CutPrefix(s, "txn_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}
