package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a prefixed unique identifier, e.g. "sale-1b9d6bcd-...".
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
