package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", writeScenario(t))
	require.NoError(t, err)
	assert.Contains(t, out, "1 file(s) valid")
}

func TestValidate_Invalid(t *testing.T) {
	out, err := execute(t, "validate", writeBrokenScenario(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "broken.yaml")
}

func TestValidate_MixedFiles(t *testing.T) {
	_, err := execute(t, "validate", writeScenario(t), writeBrokenScenario(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) invalid")
}
