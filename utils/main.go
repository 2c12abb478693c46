package utils

import (
	"fmt"
	"strings"
)

// forbiddenSampleCodeChars are characters that can't appear in sample codes because the codes end up
// in data directory paths on the posting pipeline's file server.
const forbiddenSampleCodeChars = `\/|`

// ValidateSampleCode verifies that a sample code contains none of the forbidden path characters.
func ValidateSampleCode(sampleCode string) error {
	if strings.ContainsAny(sampleCode, forbiddenSampleCodeChars) {
		return fmt.Errorf("the sample code must not contain any of the characters: %s", forbiddenSampleCodeChars)
	}
	return nil
}
