// Package id issues time-ordered identifiers for bullets and call log rows.
package id

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// epochMillis is 2025-01-01T00:00:00Z. Ids stay well inside 53 bits for years,
// so browsers can hold them as numbers when they parse bullet payloads.
const epochMillis int64 = 1735689600000

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets the node id for this replica. Later calls are no-ops.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		snowflake.Epoch = epochMillis
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New falls back to node 0 when Init was never called so tests and the CLI need no setup.
func New() int64 {
	_ = Init(0)
	return node.Generate().Int64()
}

// NewString returns New in base 10, the form bullets carry on the wire.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}

// Time recovers the creation time embedded in an id produced by NewString.
func Time(s string) (time.Time, error) {
	parsed, err := snowflake.ParseString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing id %q: %w", s, err)
	}
	_ = Init(0)
	return time.UnixMilli(parsed.Time()), nil
}
