package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"supashop-api/pkg/apierror"
)

const multipartMemory = 8 << 20

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload returns the bytes of the multipart file field. ok is false when
// the request carries no such field.
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (data []byte, ok bool, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartMemory)
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, false, apierror.New("PAYLOAD_TOO_LARGE", "File too large", "", http.StatusRequestEntityTooLarge)
			}
			return nil, false, apierror.BadRequest("invalid multipart body")
		}
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apierror.BadRequest("invalid multipart body")
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, false, apierror.New("PAYLOAD_TOO_LARGE", "File too large", fmt.Sprintf("limit is %d bytes", maxSize), http.StatusRequestEntityTooLarge)
	}

	data, err = io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, false, fmt.Errorf("read upload %s: %w", field, err)
	}
	if int64(len(data)) > maxSize {
		return nil, false, apierror.New("PAYLOAD_TOO_LARGE", "File too large", fmt.Sprintf("limit is %d bytes", maxSize), http.StatusRequestEntityTooLarge)
	}
	return data, true, nil
}

// requireUpload is readUpload for endpoints where the file is mandatory.
func requireUpload(w http.ResponseWriter, r *http.Request, field string, maxSize int64) ([]byte, error) {
	data, ok, err := readUpload(w, r, field, maxSize)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, apierror.BadRequest("No image provided")
	}
	return data, nil
}
