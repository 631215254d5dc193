package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDMonotonicAndUnique(t *testing.T) {
	Init(1)

	seen := make(map[int64]bool, 10000)
	prev := int64(0)
	for i := 0; i < 10000; i++ {
		id := NextID()
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
}

func TestBusinessNumberPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateMembershipNo(), "MEM"))
	assert.True(t, strings.HasPrefix(GeneratePaymentNo(), "PAY"))
	assert.True(t, strings.HasPrefix(GenerateTransactionNo(), "TXN"))
	assert.True(t, strings.HasPrefix(GenerateCommissionNo(), "COM"))
}
