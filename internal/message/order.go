package message

import (
	"strings"
	"time"
)

// OrderKey is the sort key of the total order over messages.
//
// Primary key: message timestamp, later wins. Tie-break: byte-lexicographic
// comparison of the lowercase hex content identifiers. The tie-break is part
// of the wire contract - it guarantees a strict total order even for
// simultaneous timestamps, so independent nodes converge on the same
// "newest" message without coordination.
type OrderKey struct {
	Timestamp time.Time
	CID       string
}

// NewOrderKey builds an order key from wire values.
func NewOrderKey(timestamp, cid string) (OrderKey, error) {
	t, err := ParseTimestamp(timestamp)
	if err != nil {
		return OrderKey{}, err
	}
	return OrderKey{Timestamp: t, CID: cid}, nil
}

// Compare returns -1, 0, or +1 as k orders before, equal to, or after o.
// Equal only when both timestamp and content identifier are equal, which by
// the collision-resistance assumption means the same message.
func (k OrderKey) Compare(o OrderKey) int {
	switch {
	case k.Timestamp.Before(o.Timestamp):
		return -1
	case k.Timestamp.After(o.Timestamp):
		return 1
	}
	return strings.Compare(k.CID, o.CID)
}

// After reports whether k is strictly newer than o.
func (k OrderKey) After(o OrderKey) bool {
	return k.Compare(o) > 0
}

// Before reports whether k is strictly older than o.
func (k OrderKey) Before(o OrderKey) bool {
	return k.Compare(o) < 0
}
