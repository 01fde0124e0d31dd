package validate

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/request"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidBase64 = errors.New("invalid base64 image data")
	ErrInvalidLimit  = errors.New("invalid limit parameter")
)

func UploadImage(req *request.UploadImage) error {
	if req.OwnerID == "" || req.Filename == "" || req.ImageData == "" {
		return ErrMissingFields
	}

	return nil
}

// ImageData decodes standard base64, padded or not. Whitespace from wrapped
// encoders is dropped first.
func ImageData(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")

	enc := base64.StdEncoding
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = base64.RawStdEncoding
	}

	data, err := enc.DecodeString(s)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidBase64
	}

	return data, nil
}

// Limit parses the limit query parameter. Empty means "use the default",
// reported as 0; range checks happen in the use case.
func Limit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}

	return n, nil
}
