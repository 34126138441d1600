package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersion tests the default development version
// TestVersion 测试默认的开发版本号
func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version)
	if Version != "dev" {
		t.Logf("Version is: %s (expected 'dev' for development)", Version)
	}
}
