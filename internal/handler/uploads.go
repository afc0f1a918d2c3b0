package handler

import (
	"context"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sanctuary/backend/internal/service"
	"github.com/sanctuary/backend/internal/storage"
)

const maxUploadSize = 20 << 20 // whole multipart body

// saveUploads stores every file posted under the given form field and returns
// descriptors for the core. Keys are storage-unique; the original filename
// survives only as metadata.
func saveUploads(ctx context.Context, store storage.Storage, form *multipart.Form, field, keyPrefix, fileType string) ([]service.FileInput, error) {
	if form == nil {
		return nil, nil
	}

	var out []service.FileInput
	for _, header := range form.File[field] {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}

		key := keyPrefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
		stored, err := store.Save(ctx, key, f, header.Header.Get("Content-Type"))
		f.Close()
		if err != nil {
			return nil, err
		}

		out = append(out, service.FileInput{
			Path:         stored,
			Type:         fileType,
			OriginalName: header.Filename,
		})
	}
	return out, nil
}
