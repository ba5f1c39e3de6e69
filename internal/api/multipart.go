package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// Upload is an in-memory file attachment for multipart endpoints.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// multipartBody builds the backend's multipart convention: a JSON part named
// data plus an optional file part.
func multipartBody(dataJSON []byte, fileField string, file *Upload) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="data"`)
	header.Set(headerContentType, contentTypeJSON)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}

	if _, err = part.Write(dataJSON); err != nil {
		return nil, "", err
	}

	if file != nil {
		fileHeader := textproto.MIMEHeader{}
		fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, file.Name))

		if file.ContentType != "" {
			fileHeader.Set(headerContentType, file.ContentType)
		}

		filePart, err := w.CreatePart(fileHeader)
		if err != nil {
			return nil, "", err
		}

		if _, err = filePart.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
