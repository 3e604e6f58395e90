package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/protostruct/pkg/schema"
)

func TestRouter_RequiresAPIKey(t *testing.T) {
	router, _ := newTestRouter(t)

	req, err := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_MetricsUnprotected(t *testing.T) {
	router, _ := newTestRouter(t)

	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "protostruct_")
}

func TestFieldSpecFromDescriptor(t *testing.T) {
	registry := schema.NewDynamicRegistry()
	_, err := registry.Register("Address", []schema.FieldSpec{
		{Name: "street", Type: "string"},
	})
	require.NoError(t, err)

	specs := []schema.FieldSpec{
		{Name: "name", Type: "string"},
		{Name: "age", Type: "int", Optional: true},
		{Name: "tags", Type: "string", Repeated: true},
		{Name: "home", Type: "Address"},
		{Name: "scores", Type: "map", Key: "string", Value: "int"},
		{Name: "places", Type: "map", Key: "int", Value: "Address"},
	}
	desc, err := registry.Register("User", specs)
	require.NoError(t, err)

	// Rebuilding specs from the descriptor must reproduce the input, so
	// types can be copied between registries losslessly.
	for i, fd := range desc.Fields {
		assert.Equal(t, specs[i], fieldSpecFromDescriptor(fd), "field %s", fd.Name)
	}
}
