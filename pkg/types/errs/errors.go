package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrRecordNotFound = errors.New("record not found")
	ErrBlobNotFound   = errors.New("blob not found")
	ErrStorageWrite   = errors.New("storage write failed")
	ErrStorageRead    = errors.New("storage read failed")
	ErrPresign        = errors.New("download reference issuance failed")
)

// PartialFailureError reports a delete where the blob and the metadata
// record were removed independently and at least one side failed.
type PartialFailureError struct {
	BlobDeleted   bool
	RecordDeleted bool

	BlobErr   error
	RecordErr error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial delete: blob_deleted=%t record_deleted=%t", e.BlobDeleted, e.RecordDeleted)
}

func (e *PartialFailureError) Unwrap() []error {
	var out []error
	if e.BlobErr != nil {
		out = append(out, e.BlobErr)
	}
	if e.RecordErr != nil {
		out = append(out, e.RecordErr)
	}

	return out
}
