package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_KeyOrderIndependent(t *testing.T) {
	// 同样的字段不同顺序，签名必须一致
	a := []byte(`{"payment_id":"p1","payment_status":"finished","order_id":"42"}`)
	b := []byte(`{"order_id":"42","payment_id":"p1","payment_status":"finished"}`)

	sigA, err := Sign(a, "secret")
	require.NoError(t, err)
	sigB, err := Sign(b, "secret")
	require.NoError(t, err)

	assert.Equal(t, sigA, sigB)
	assert.Len(t, sigA, 128) // SHA512 hex
}

func TestSign_DifferentSecretDiffers(t *testing.T) {
	payload := []byte(`{"payment_id":"p1"}`)

	sigA, err := Sign(payload, "secret-a")
	require.NoError(t, err)
	sigB, err := Sign(payload, "secret-b")
	require.NoError(t, err)

	assert.NotEqual(t, sigA, sigB)
}

func TestSign_InvalidJSON(t *testing.T) {
	_, err := Sign([]byte(`not json`), "secret")
	assert.Error(t, err)
}
