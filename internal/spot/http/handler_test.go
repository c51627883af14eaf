package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)

	write := func(available []RangeDTO, applied int, errs []BatchErrorDTO) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		WriteAvailability(c, available, applied, errs)
		return w
	}

	t.Run("all applied", func(t *testing.T) {
		w := write([]RangeDTO{}, 2, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("partial failure stays 200", func(t *testing.T) {
		w := write([]RangeDTO{}, 1, []BatchErrorDTO{{Ref: "entry 1", Error: "end not after start"}})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "entry 1", resp.Errors[0].Ref)
	})

	t.Run("every entry rejected is 500", func(t *testing.T) {
		w := write([]RangeDTO{}, 0, []BatchErrorDTO{
			{Ref: "entry 0", Error: "end not after start"},
			{Ref: "entry 1", Error: "end not after start"},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
