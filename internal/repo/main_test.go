package repo_test

import (
	"os"
	"testing"

	"github.com/tomo-travel/tomo/backend/testutil"
)

// TestMain runs once for the whole repo_test binary. It brings the test
// database up to the latest schema so individual tests never think about
// migration state. Without TEST_DATABASE_URL every test skips itself.
func TestMain(m *testing.M) {
	testutil.MigrateDSN()
	os.Exit(m.Run())
}
