package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSampleCode(t *testing.T) {
	assert.NoError(t, ValidateSampleCode("ab-2026-001"))
	assert.NoError(t, ValidateSampleCode("CuSO4 sample #3"))

	assert.Error(t, ValidateSampleCode(`ab\2026`))
	assert.Error(t, ValidateSampleCode("ab/2026"))
	assert.Error(t, ValidateSampleCode("ab|2026"))
}
