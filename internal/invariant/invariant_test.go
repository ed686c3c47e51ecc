package invariant

import "testing"

func TestCheck_PassesSilentlyWhenTrue(t *testing.T) {
	Check(true, "should never fire: %d", 1)
}
