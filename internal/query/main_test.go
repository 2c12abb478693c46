package query

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestValidateUsernameQueryParam(t *testing.T) {
	t.Run("returns the given username", func(t *testing.T) {
		username, err := ValidateUsernameQueryParam(testContext("/?user=ipavlov"))
		require.NoError(t, err)
		assert.Equal(t, "ipavlov", username)
	})

	t.Run("rejects a missing username", func(t *testing.T) {
		_, err := ValidateUsernameQueryParam(testContext("/"))
		assert.Error(t, err)
	})
}

func TestValidateEnumQueryParam(t *testing.T) {
	defaultPeriod := "all"

	t.Run("returns the default when the parameter is absent", func(t *testing.T) {
		period, err := ValidateEnumQueryParam(testContext("/"), "period", []string{"all", "current"}, &defaultPeriod)
		require.NoError(t, err)
		assert.Equal(t, "all", period)
	})

	t.Run("lowercases and accepts a listed value", func(t *testing.T) {
		period, err := ValidateEnumQueryParam(testContext("/?period=Current"), "period", []string{"all", "current"}, &defaultPeriod)
		require.NoError(t, err)
		assert.Equal(t, "current", period)
	})

	t.Run("rejects an unlisted value", func(t *testing.T) {
		_, err := ValidateEnumQueryParam(testContext("/?period=previous"), "period", []string{"all", "current"}, &defaultPeriod)
		assert.Error(t, err)
	})

	t.Run("requires a value when there's no default", func(t *testing.T) {
		_, err := ValidateEnumQueryParam(testContext("/"), "period", []string{"all", "current"}, nil)
		assert.Error(t, err)
	})
}
