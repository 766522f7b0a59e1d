package session

import (
	"testing"
	"time"

	"memberportal/web-service/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() models.Session {
	return models.Session{
		SessionID:     "sess-1",
		Authenticated: true,
		Username:      "alice1",
		Role:          models.RoleUser,
		ExpiresAt:     time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		JustSignedUp:  true,
		PageHits:      3,
	}
}

func TestCodecEncrypted(t *testing.T) {
	codec, err := NewCodec("store-secret")
	require.NoError(t, err)
	require.True(t, codec.Encrypted())

	data, err := codec.Encode(sampleSession())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alice1")

	got, err := codec.Decode("sess-1", data)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(sampleSession(), got))
}

func TestCodecRejectsForeignPayloads(t *testing.T) {
	codec, err := NewCodec("store-secret")
	require.NoError(t, err)
	data, err := codec.Encode(sampleSession())
	require.NoError(t, err)

	_, err = codec.Decode("sess-2", data)
	assert.ErrorIs(t, err, ErrCorruptPayload)

	other, err := NewCodec("other-secret")
	require.NoError(t, err)
	_, err = other.Decode("sess-1", data)
	assert.ErrorIs(t, err, ErrCorruptPayload)

	_, err = codec.Decode("sess-1", []byte("x"))
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

func TestCodecPlain(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)
	assert.False(t, codec.Encrypted())

	data, err := codec.Encode(sampleSession())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"username":"alice1"`)

	got, err := codec.Decode("sess-1", data)
	require.NoError(t, err)
	assert.Equal(t, sampleSession(), got)

	_, err = codec.Decode("sess-1", []byte("{not json"))
	assert.ErrorIs(t, err, ErrCorruptPayload)
}
