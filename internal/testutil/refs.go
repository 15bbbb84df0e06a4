package testutil

import (
	"fmt"

	"github.com/appmanifest/ambuild/internal/bom"
)

// SeqRefs returns a deterministic RefSource producing "uuid-1", "uuid-2", ...
// in call order. Tests use it to assert exact reference values.
func SeqRefs() bom.RefSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}
}
