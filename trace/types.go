package trace

import (
	"errors"

	"github.com/montemc/monte/model"
)

// Sentinel errors returned by trace backends.
var (
	// ErrNotInitialized indicates Tally or Values before Initialize.
	ErrNotInitialized = errors.New("trace: backend not initialized")

	// ErrUnknownVariable indicates a name no chain has recorded.
	ErrUnknownVariable = errors.New("trace: unknown variable")

	// ErrBadChain indicates a chain index out of range.
	ErrBadChain = errors.New("trace: chain index out of range")

	// ErrEmptySlice indicates burn/thin selected zero samples.
	ErrEmptySlice = errors.New("trace: empty sample slice")
)

// Backend records sampled values, one chain per sampling run.
//
// Initialize opens a fresh chain for the tracked nodes; expected is a
// capacity hint for the number of Tally calls. Tally snapshots the
// current model values; iter is the driver's iteration index. Finalize
// closes the open chain. Values retrieves a recorded series with
// burn/thin applied; chain -1 means the most recent chain.
type Backend interface {
	Initialize(m *model.Model, tracked []model.NodeID, expected int) error
	Tally(iter int) error
	Finalize() error
	Values(name string, burn, thin, chain int) ([]model.Value, error)
}
