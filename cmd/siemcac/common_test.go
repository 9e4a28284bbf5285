package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/output"
)

func Test_ParseVariables(t *testing.T) {
	t.Parallel()

	vars, err := parseVariables([]string{"repo_name=logs-fra", "retention=90"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"repo_name": "logs-fra", "retention": "90"}, vars)
}

func Test_ParseVariables_ValueMayContainEquals(t *testing.T) {
	t.Parallel()

	vars, err := parseVariables([]string{"selector=role=aio"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"selector": "role=aio"}, vars)
}

func Test_ParseVariables_RejectsMalformedPairs(t *testing.T) {
	t.Parallel()

	_, err := parseVariables([]string{"no-separator"})
	require.Error(t, err)

	_, err = parseVariables([]string{"=value"})
	require.Error(t, err, "empty variable names are rejected")
}

func Test_ParseVariables_EmptyInput(t *testing.T) {
	t.Parallel()

	vars, err := parseVariables(nil)
	require.NoError(t, err)
	assert.Nil(t, vars)
}

func Test_WriteResolution_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := writeResolution(&buf, "xml", "prod", &output.ResolutionReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
