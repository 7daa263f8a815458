package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestABIForTarget(t *testing.T) {
	linux, err := ABIForTarget("linux")
	require.NoError(t, err)
	assert.Equal(t, SysV(), linux)

	macos, err := ABIForTarget("macos")
	require.NoError(t, err)
	assert.Equal(t, "_", macos.SymbolPrefix)

	windows, err := ABIForTarget("windows")
	require.NoError(t, err)
	assert.True(t, windows.IsWin64)
	assert.Len(t, windows.IntArgRegs, 4)

	_, err = ABIForTarget("amiga")
	assert.Error(t, err)
}

func TestSymAppliesPrefix(t *testing.T) {
	assert.Equal(t, "_malloc", MachO().Sym("malloc"))
	assert.Equal(t, "malloc", SysV().Sym("malloc"))
	assert.Equal(t, "malloc", Win64().Sym("malloc"))
}
