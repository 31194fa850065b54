package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"catalog-api/internal/model"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// payload is a request body before coercion. JSON objects decode into it
// directly; multipart fields become strings, or []any when repeated.
type payload struct {
	fields map[string]any
	files  map[string][]*multipart.FileHeader
}

// readPayload decodes a JSON or multipart/form-data body of at most maxBytes.
func readPayload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return readMultipart(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, model.ErrValidation.WithMessage("Malformed form body").Wrap(err)
		}
		return &payload{fields: formFields(r.PostForm)}, nil
	default:
		return readJSON(r)
	}
}

func readJSON(r *http.Request) (*payload, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err)
	}

	p := &payload{fields: map[string]any{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return p, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&p.fields); err != nil || p.fields == nil {
		return nil, model.ErrInvalidJSON.Wrap(err)
	}
	return p, nil
}

func readMultipart(r *http.Request) (*payload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, bodyError(err)
	}

	return &payload{
		fields: formFields(r.MultipartForm.Value),
		files:  r.MultipartForm.File,
	}, nil
}

func formFields(values map[string][]string) map[string]any {
	fields := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			fields[key] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			fields[key] = list
		}
	}
	return fields
}

// uploads reads every file sent under key.
func (p *payload) uploads(key string) ([]model.Upload, error) {
	headers := p.files[key]
	if len(headers) == 0 {
		return nil, nil
	}

	out := make([]model.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, model.ErrValidation.WithMessage("Unreadable file " + fh.Filename).Wrap(err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, bodyError(err)
		}

		out = append(out, model.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

// upload reads the single file sent under key, if any.
func (p *payload) upload(key string) (*model.Upload, error) {
	files, err := p.uploads(key)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	if len(files) > 1 {
		return nil, fieldError(key, key+" accepts a single file")
	}
	return &files[0], nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return model.ErrValidation.WithMessage("Request body too large").
			WithDetails(map[string]any{"limitBytes": tooLarge.Limit})
	}
	return model.ErrValidation.WithMessage("Malformed request body").Wrap(err)
}
