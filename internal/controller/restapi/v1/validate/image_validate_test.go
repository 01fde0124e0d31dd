package validate

import (
	"testing"

	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	assert.NoError(t, UploadImage(&request.UploadImage{OwnerID: "u1", Filename: "a.jpg", ImageData: "AQID"}))
	assert.ErrorIs(t, UploadImage(&request.UploadImage{Filename: "a.jpg", ImageData: "AQID"}), ErrMissingFields)
	assert.ErrorIs(t, UploadImage(&request.UploadImage{OwnerID: "u1", ImageData: "AQID"}), ErrMissingFields)
	assert.ErrorIs(t, UploadImage(&request.UploadImage{OwnerID: "u1", Filename: "a.jpg"}), ErrMissingFields)
}

func TestImageData(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
		err  error
	}{
		{"padded", "/9j/", []byte{0xFF, 0xD8, 0xFF}, nil},
		{"padded short", "AQ==", []byte{1}, nil},
		{"unpadded", "AQ", []byte{1}, nil},
		{"wrapped", "AQID\nBAU=", []byte{1, 2, 3, 4, 5}, nil},
		{"garbage", "not base64!", nil, ErrInvalidBase64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageData(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimit(t *testing.T) {
	n, err := Limit("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = Limit("10")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	for _, in := range []string{"abc", "0", "-5", "1.5"} {
		_, err = Limit(in)
		assert.ErrorIs(t, err, ErrInvalidLimit, in)
	}
}
