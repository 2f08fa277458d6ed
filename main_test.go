package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
)

func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"simulate", "--teams=4", "--rounds=3", "--human=-1", "--seed=11"})
	require.NoError(t, rootCmd.Execute())

	var res draft.Results
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.Complete)
	assert.Equal(t, 12, res.Picks)
	assert.Len(t, res.Rankings, 4)
}

func TestSimulateRejectsBadLeague(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"simulate", "--teams=0"})
	assert.Error(t, rootCmd.Execute())
}
