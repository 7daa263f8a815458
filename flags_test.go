package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, args, err := ParseFlags([]string{"program.bas"})
	require.NoError(t, err)
	assert.Equal(t, "a.out", opts.OutPath)
	assert.Equal(t, "linux", opts.Target)
	assert.False(t, opts.Verbose)
	assert.Equal(t, []string{"program.bas"}, args)
}

func TestParseFlagsLongAndShortForms(t *testing.T) {
	opts, args, err := ParseFlags([]string{"-o", "out", "-S", "--target", "macos", "prog.bas"})
	require.NoError(t, err)
	assert.Equal(t, "out", opts.OutPath)
	assert.True(t, opts.EmitAsm)
	assert.Equal(t, "macos", opts.Target)
	assert.Equal(t, []string{"prog.bas"}, args)
}

func TestParseFlagsRejectsUnknownTarget(t *testing.T) {
	_, _, err := ParseFlags([]string{"--target", "amiga", "prog.bas"})
	assert.Error(t, err)
}

func TestParseFlagsVersion(t *testing.T) {
	opts, _, err := ParseFlags([]string{"--version"})
	require.NoError(t, err)
	assert.True(t, opts.ShowVersion)
}
