package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-service/internal/models"
)

func TestMediaTypeFor(t *testing.T) {
	mt, err := mediaTypeFor("image/png")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeImage, mt)

	mt, err = mediaTypeFor("video/mp4")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeVideo, mt)
}

func TestMediaTypeForUnsupported(t *testing.T) {
	_, err := mediaTypeFor("application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = mediaTypeFor("")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}
