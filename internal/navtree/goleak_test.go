package navtree

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures shared builds never outlive the tests that started them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
