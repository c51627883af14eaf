package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlot/parking-booking-backend/internal/pkg/batch"
)

func TestBatchStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, BatchStatus(3, 0))
	assert.Equal(t, http.StatusOK, BatchStatus(1, 2))
	assert.Equal(t, http.StatusOK, BatchStatus(0, 0))
	assert.Equal(t, http.StatusInternalServerError, BatchStatus(0, 1))
}

func TestBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	write := func(items []string, errs []batch.ItemError) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Batch(c, items, errs)
		return w
	}

	t.Run("partial failure stays 200", func(t *testing.T) {
		w := write([]string{"a"}, []batch.ItemError{{Ref: "b", Err: errors.New("boom")}})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp BatchResponse[string]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"a"}, resp.Items)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "b", resp.Errors[0].Ref)
		assert.Equal(t, "boom", resp.Errors[0].Error)
	})

	t.Run("every element failed is 500", func(t *testing.T) {
		w := write(nil, []batch.ItemError{{Ref: "a", Err: errors.New("boom")}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp BatchResponse[string]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Items)
	})

	t.Run("nil items marshal as empty array", func(t *testing.T) {
		w := write(nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"errors":[]}`, w.Body.String())
	})
}
