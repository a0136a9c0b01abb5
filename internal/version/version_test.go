package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origTag, origCommit := Tag, Commit
	t.Cleanup(func() { Tag, Commit = origTag, origCommit })

	Tag, Commit = "", ""
	assert.Equal(t, "dev", String())

	Tag = "v1.4.0"
	assert.Equal(t, "v1.4.0", String())

	Commit = "0123456789abcdef"
	assert.Equal(t, "v1.4.0 (0123456)", String())

	Commit = "abc"
	assert.Equal(t, "v1.4.0 (abc)", String())
}
