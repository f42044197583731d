package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerops/towerctl/pkg/api"
)

func TestStripComments(t *testing.T) {
	in := "# header\nfoo: 1\n# trailing note\nbar: 2"
	assert.Equal(t, "foo: 1\nbar: 2", stripComments(in))
}

func TestValidateExtraVars(t *testing.T) {
	assert.NoError(t, validateExtraVars(""))
	assert.NoError(t, validateExtraVars("   \n"))
	assert.NoError(t, validateExtraVars("foo: 1\nbar: [1, 2]"))
	assert.NoError(t, validateExtraVars(`{"json": "is yaml too"}`))

	err := validateExtraVars("foo: [unclosed")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestAppendExtraVars(t *testing.T) {
	assert.Equal(t, "b: 2", appendExtraVars("", "b: 2"))
	assert.Equal(t, "b: 2", appendExtraVars("  \n", "b: 2"))
	assert.Equal(t, "a: 1\nb: 2", appendExtraVars("a: 1", "b: 2"))
	assert.Equal(t, "a: 1\nb: 2", appendExtraVars("a: 1\n", "b: 2"))
}
