package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolchainForLinux(t *testing.T) {
	steps := toolchainFor(SysV(), "in.s", "in.o", "out")
	assert.Len(t, steps, 2)
	assert.Equal(t, "as", steps[0].name)
	assert.Equal(t, "cc", steps[1].name)
	assert.Contains(t, steps[1].args, "-no-pie")
}

func TestToolchainForMacOS(t *testing.T) {
	steps := toolchainFor(MachO(), "in.s", "in.o", "out")
	assert.Len(t, steps, 2)
	assert.Equal(t, "as", steps[0].name)
	assert.NotContains(t, steps[1].args, "-no-pie")
}

func TestToolchainForWindows(t *testing.T) {
	steps := toolchainFor(Win64(), "in.s", "in.obj", "out.exe")
	assert.Len(t, steps, 2)
	assert.Equal(t, "clang", steps[0].name)
	assert.Equal(t, "link.exe", steps[1].name)
	assert.Contains(t, steps[1].args, "/SUBSYSTEM:CONSOLE")
}

func TestToolchainForUnknownTarget(t *testing.T) {
	steps := toolchainFor(ABI{Name: "amiga"}, "in.s", "in.o", "out")
	assert.Nil(t, steps)
}

func TestDataSectionSize(t *testing.T) {
	asm := ".data\nfoo\n.bss\nbar\n"
	size := dataSectionSize(asm)
	assert.Equal(t, len(".data\nfoo\n"), size)
}

func TestDataSectionSizeNoBSS(t *testing.T) {
	asm := ".data\nfoo\n"
	assert.Equal(t, len(asm), dataSectionSize(asm))
}

func TestDataSectionSizeNoData(t *testing.T) {
	assert.Equal(t, 0, dataSectionSize(".text\nfoo\n"))
}
