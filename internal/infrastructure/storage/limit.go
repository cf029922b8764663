package storage

import (
	"fmt"
	"io"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
)

// readCapped reads at most MaxUploadBytes from r. size is what the backend
// reports for the object, or -1 when it is unknown.
func readCapped(r io.Reader, key string, size int64) ([]byte, error) {
	if size > valueobject.MaxUploadBytes {
		return nil, tooLarge(key, size)
	}

	data, err := io.ReadAll(io.LimitReader(r, valueobject.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > valueobject.MaxUploadBytes {
		return nil, tooLarge(key, int64(len(data)))
	}
	return data, nil
}

func tooLarge(key string, size int64) error {
	return domain.NewValidationError("size_bytes",
		fmt.Sprintf("stored object %q is at least %d bytes, the maximum is %d", key, size, valueobject.MaxUploadBytes))
}
