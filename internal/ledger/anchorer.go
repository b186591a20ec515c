package ledger

import "errors"

// ErrDisabled is returned by the noop anchorer when no gateway is configured.
var ErrDisabled = errors.New("ledger anchoring is not configured")

// Entry is one anchored report as stored on the ledger: the content hash and
// category only, never the report body.
type Entry struct {
	Index     int    `json:"index"`
	Hash      string `json:"hash"`
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"categoria"`
}

// Anchorer is the boundary to the ledger-anchoring transaction layer. The
// engine and report service treat it as an out-of-band collaborator: no
// retries, no transaction management on this side.
type Anchorer interface {
	// Register anchors a content hash with its category and returns the
	// transaction hash.
	Register(hash, category string) (string, error)

	// Total returns the number of anchored entries.
	Total() (int, error)

	// Entry returns the anchored entry at the given index.
	Entry(index int) (*Entry, error)

	// All returns every anchored entry.
	All() ([]Entry, error)

	// Balance returns the anchoring account balance in the ledger's native
	// unit.
	Balance() (string, error)

	// EstimateCost returns the estimated cost of one Register call.
	EstimateCost() (string, error)
}

// Disabled is an Anchorer for deployments without a gateway; every call
// fails with ErrDisabled except Register, which returns an empty tx hash so
// reports can still be stored locally.
type Disabled struct{}

func (Disabled) Register(hash, category string) (string, error) { return "", nil }
func (Disabled) Total() (int, error)                            { return 0, ErrDisabled }
func (Disabled) Entry(index int) (*Entry, error)                { return nil, ErrDisabled }
func (Disabled) All() ([]Entry, error)                          { return nil, ErrDisabled }
func (Disabled) Balance() (string, error)                       { return "", ErrDisabled }
func (Disabled) EstimateCost() (string, error)                  { return "", ErrDisabled }
