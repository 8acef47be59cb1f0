package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRepairRequest_JSONBody(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[]}`
	r := httptest.NewRequest(http.MethodPost, "/repair", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	request, err := readRepairRequest(r)
	require.NoError(t, err)
	assert.Equal(t, body, request.Payload)
	assert.False(t, request.SaveFile)
}

func TestReadRepairRequest_RejectsGet(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/repair", nil)
	_, err := readRepairRequest(r)
	require.Error(t, err)
}

func TestReadRepairRequest_EmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/repair", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")

	_, err := readRepairRequest(r)
	require.Error(t, err)
}

func TestReadRepairRequest_MultipartUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "input.geojson")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("saveFile", "true"))
	require.NoError(t, mw.WriteField("filepath", "/data/input.geojson"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/repair", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	request, err := readRepairRequest(r)
	require.NoError(t, err)
	assert.Contains(t, request.Payload, "FeatureCollection")
	assert.True(t, request.SaveFile)
	assert.Equal(t, "/data/input.geojson", request.FilePath)
}

func TestReadRepairRequest_MultipartInlineCollection(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("featureCollection", `{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, mw.WriteField("shapefile", "true"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/repair", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	request, err := readRepairRequest(r)
	require.NoError(t, err)
	assert.Contains(t, request.Payload, "FeatureCollection")
	assert.True(t, request.Shapefile)
}

func TestReadRepairRequest_MultipartServerSidePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0644))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("filepath", path))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/repair", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	request, err := readRepairRequest(r)
	require.NoError(t, err)
	assert.Contains(t, request.Payload, "FeatureCollection")
}

func TestReadRepairRequest_MultipartNoPayload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("saveFile", "true"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/repair", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	_, err := readRepairRequest(r)
	require.Error(t, err)
}

func TestProcessedName(t *testing.T) {
	assert.Equal(t, "/data/city_PROCESSED.geojson", processedName("/data/city.geojson", ".geojson"))
	assert.Equal(t, "/data/city_PROCESSED.geojson", processedName("/data/city.json", ".geojson"))
	assert.Equal(t, "/data/city_PROCESSED.geojson", processedName("/data/city", ".geojson"))
}
