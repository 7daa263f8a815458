package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestForTypoClosesOnOneEdit(t *testing.T) {
	assert.Equal(t, "did you mean PRINT?", SuggestForTypo("PRIT"))
	assert.Equal(t, "did you mean LET?", SuggestForTypo("LE"))
}

func TestSuggestForTypoNoCloseMatch(t *testing.T) {
	assert.Equal(t, "", SuggestForTypo("XQZZYPLUGH"))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("PRINT", "PRINT"))
	assert.Equal(t, 1, levenshteinDistance("PRIT", "PRINT"))
}
