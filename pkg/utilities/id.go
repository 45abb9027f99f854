package utilities

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// InitSnowflake sets the node used by NewSnowflakeID. Only the first call has
// any effect; an invalid node id leaves the generator on KSUID fallback.
func InitSnowflake(nodeID int64) {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			return
		}
		node = n
	})
}

// NewSnowflakeID generates a snowflake ID string. The node defaults to 1
// when InitSnowflake was never called. If no node is available it falls back
// to a KSUID string to ensure a unique ID is returned.
func NewSnowflakeID() string {
	InitSnowflake(1)
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
