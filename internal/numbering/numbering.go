// Package numbering issues human-readable, globally unique order and invoice
// numbers of the form ORD-20261019-<id>.
package numbering

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	OrderPrefix   = "ORD"
	InvoicePrefix = "INV"
)

// Authority derives numbers from a snowflake node. Snowflake ids are
// monotonic per node and unique across nodes with distinct node ids, so
// numbers never collide at sub-second rates.
type Authority struct {
	node *snowflake.Node
	now  func() time.Time
}

// New creates an Authority for the given node id (0..1023).
func New(nodeID int64) (*Authority, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("numbering node %d: %w", nodeID, err)
	}
	return &Authority{node: node, now: time.Now}, nil
}

func (a *Authority) next(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, a.now().UTC().Format("20060102"), a.node.Generate().Base36())
}

// NextOrderNumber returns a fresh ORD- number.
func (a *Authority) NextOrderNumber() string { return a.next(OrderPrefix) }

// NextInvoiceNumber returns a fresh INV- number.
func (a *Authority) NextInvoiceNumber() string { return a.next(InvoicePrefix) }
