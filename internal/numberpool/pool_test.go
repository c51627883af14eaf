package numberpool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimNextIsDeterministic(t *testing.T) {
	p, err := New(1, 5)
	require.NoError(t, err)

	for want := 1; want <= 5; want++ {
		n, err := p.ClaimNext()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	_, err = p.ClaimNext()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestClaimNextFillsGaps(t *testing.T) {
	p, err := New(1, 5)
	require.NoError(t, err)
	require.NoError(t, p.Claim(1))
	require.NoError(t, p.Claim(3))

	n, err := p.ClaimNext()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestClaimExplicit(t *testing.T) {
	p, err := New(1, 10)
	require.NoError(t, err)

	require.NoError(t, p.Claim(7))
	assert.ErrorIs(t, p.Claim(7), ErrAlreadyClaimed)
	assert.ErrorIs(t, p.Claim(0), ErrOutOfRange)
	assert.ErrorIs(t, p.Claim(11), ErrOutOfRange)
	assert.Equal(t, []int{7}, p.Claimed())
}

func TestClaimBatchPartialFailure(t *testing.T) {
	p, err := New(1, 5)
	require.NoError(t, err)

	claimed, errs := p.ClaimBatch([]int{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, claimed)
	require.Len(t, errs, 1)
	assert.Equal(t, 6, errs[0].Number)
	assert.ErrorIs(t, errs[0], ErrOutOfRange)
}

func TestUnclaimIsIdempotent(t *testing.T) {
	p, err := New(1, 5)
	require.NoError(t, err)
	require.NoError(t, p.Claim(2))
	require.NoError(t, p.Claim(3))

	p.Unclaim(2)
	p.Unclaim(2) // already released, no-op
	p.Unclaim(9) // never claimed, no-op

	assert.Equal(t, []int{3}, p.Claimed())
	require.NoError(t, p.Claim(2), "released number can be claimed again")
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	_, err := New(5, 1)
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	p, err := New(1, 20)
	require.NoError(t, err)
	require.NoError(t, p.Claim(4))
	require.NoError(t, p.Claim(17))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Pool
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded.Min())
	assert.Equal(t, 20, decoded.Max())
	assert.Equal(t, []int{4, 17}, decoded.Claimed())
}

func TestUnmarshalRejectsDuplicates(t *testing.T) {
	var p Pool
	err := json.Unmarshal([]byte(`{"min":1,"max":5,"claimed":[2,2]}`), &p)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}
