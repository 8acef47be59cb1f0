package main

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps multipart form memory usage.
const maxUploadBytes = 1 << 30

// RepairRequest is the payload and options extracted from a repair or check
// request, whichever way the client sent them.
type RepairRequest struct {
	Payload   string
	FilePath  string
	SaveFile  bool
	Shapefile bool
}

// readRepairRequest accepts either a raw JSON body or a multipart form with a
// "file" upload, an inline "featureCollection" value, or a server-side
// "filepath" to read. Form values "saveFile" and "shapefile" toggle saving the
// output next to the input and zip/shapefile responses.
func readRepairRequest(r *http.Request) (*RepairRequest, error) {
	if r.Method != http.MethodPost {
		return nil, eris.New("invalid request method, only POST allowed")
	}

	request := &RepairRequest{Shapefile: r.URL.Query().Get("shapefile") == "true"}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, eris.Wrap(err, "read request body")
		}
		defer r.Body.Close()

		if len(body) == 0 {
			return nil, eris.New("empty request body")
		}
		request.Payload = string(body)
		return request, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, eris.Wrap(err, "parse multipart form")
	}

	var fileHeader *multipart.FileHeader
	if headers := r.MultipartForm.File["file"]; len(headers) > 0 {
		fileHeader = headers[0]
	}

	if values := r.MultipartForm.Value["filepath"]; len(values) > 0 {
		request.FilePath = values[0]
	}
	if values := r.MultipartForm.Value["saveFile"]; len(values) > 0 {
		request.SaveFile = values[0] == "true"
	}
	if values := r.MultipartForm.Value["shapefile"]; len(values) > 0 {
		request.Shapefile = values[0] == "true"
	}

	switch {
	case fileHeader != nil:
		file, err := fileHeader.Open()
		if err != nil {
			return nil, eris.Wrap(err, "open uploaded file")
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return nil, eris.Wrap(err, "read uploaded file")
		}
		request.Payload = string(content)

	case len(r.MultipartForm.Value["featureCollection"]) > 0:
		request.Payload = r.MultipartForm.Value["featureCollection"][0]

	case request.FilePath != "":
		content, err := os.ReadFile(request.FilePath)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", request.FilePath)
		}
		request.Payload = string(content)

	default:
		return nil, eris.New("no suitable payload found")
	}

	return request, nil
}

// RequestLogger is a middleware to log HTTP requests.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Str("ip", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
