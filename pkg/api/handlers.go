package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/protostruct/pkg/codec"
	"github.com/ssargent/protostruct/pkg/schema"
	"github.com/ssargent/protostruct/pkg/storage"
	"github.com/ssargent/protostruct/pkg/wire"
)

// maxBodyBytes caps request bodies; encoded messages and type definitions
// are small by construction.
const maxBodyBytes = 4 << 20

// Server holds the API server state
type Server struct {
	registry *schema.DynamicRegistry
	vault    IVault
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server
func NewServer(registry *schema.DynamicRegistry, vault IVault, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		registry: registry,
		vault:    vault,
		config:   config,
		metrics:  metrics,
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleRegisterType registers a record type from a JSON definition. Field
// numbers are assigned by declaration order, so the definition's field order
// is the wire contract.
func (s *Server) handleRegisterType(w http.ResponseWriter, r *http.Request) {
	var def TypeDefinition
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&def); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	specs := make([]schema.FieldSpec, len(def.Fields))
	for i, f := range def.Fields {
		specs[i] = schema.FieldSpec{
			Name:     f.Name,
			Type:     f.Type,
			Repeated: f.Repeated,
			Optional: f.Optional,
			Key:      f.Key,
			Value:    f.Value,
		}
	}

	if _, err := s.registry.Register(def.Name, specs); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.metrics.SetRegisteredTypes(len(s.registry.Names()))
	sendSuccess(w, map[string]string{"message": fmt.Sprintf("Type %s registered", def.Name)})
}

// handleListTypes lists registered type names in registration order.
func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]interface{}{"types": s.registry.Names()})
}

// handleGetType describes one registered type.
func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}

	// Render each field in the shape Register accepts, so the description
	// round trips: type names for messages, key/value for maps.
	fields := make([]map[string]interface{}, len(desc.Fields))
	for i, fd := range desc.Fields {
		spec := fieldSpecFromDescriptor(fd)
		field := map[string]interface{}{
			"name":   spec.Name,
			"number": fd.Number,
			"kind":   fd.Kind.String(),
			"type":   spec.Type,
		}
		if spec.Repeated {
			field["repeated"] = true
		}
		if spec.Optional {
			field["optional"] = true
		}
		if spec.Key != "" {
			field["key"] = spec.Key
			field["value"] = spec.Value
		}
		fields[i] = field
	}

	sendSuccess(w, map[string]interface{}{
		"name":   desc.Name,
		"fields": fields,
	})
}

// handleEncode encodes a JSON field mapping to binary wire bytes.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	data, err := codec.EncodeFields(desc, fields)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", desc.Name, false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to encode: %v", err), http.StatusBadRequest)
		return
	}

	s.metrics.RecordCodecOperation("encode", desc.Name, true, time.Since(start))
	s.metrics.RecordMessageSize(desc.Name, len(data))

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		sendError(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// handleDecode decodes binary wire bytes to a JSON field mapping.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	fields, err := codec.DecodeFields(data, desc)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", desc.Name, false, time.Since(start))
		status := http.StatusInternalServerError
		var ferr *wire.FormatError
		if errors.As(err, &ferr) {
			status = http.StatusBadRequest
		}
		sendError(w, fmt.Sprintf("Failed to decode: %v", err), status)
		return
	}

	s.metrics.RecordCodecOperation("decode", desc.Name, true, time.Since(start))
	sendSuccess(w, fields)
}

// handleCreateMessage encodes a JSON field mapping and stores it in the vault.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	data, err := codec.EncodeFields(desc, fields)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", desc.Name, false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to encode: %v", err), http.StatusBadRequest)
		return
	}
	s.metrics.RecordCodecOperation("encode", desc.Name, true, time.Since(start))
	s.metrics.RecordMessageSize(desc.Name, len(data))

	id, err := s.vault.Put(desc.Name, data)
	if err != nil {
		s.metrics.RecordVaultOperation("put", false)
		sendError(w, fmt.Sprintf("Failed to store message: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordVaultOperation("put", true)
	sendSuccess(w, map[string]string{"id": id, "type": desc.Name})
}

// handleListMessages lists every stored message of a type, decoded.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}

	entries, err := s.vault.List(desc.Name)
	if err != nil {
		s.metrics.RecordVaultOperation("list", false)
		sendError(w, fmt.Sprintf("Failed to list messages: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordVaultOperation("list", true)

	messages := make([]MessageResponse, 0, len(entries))
	for _, entry := range entries {
		fields, err := codec.DecodeFields(entry.Data, desc)
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to decode message %s: %v", entry.ID, err), http.StatusInternalServerError)
			return
		}
		messages = append(messages, MessageResponse{ID: entry.ID, Type: desc.Name, Fields: fields})
	}

	sendSuccess(w, map[string]interface{}{"messages": messages})
}

// handleGetMessage fetches and decodes one stored message.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	data, err := s.vault.Get(desc.Name, id)
	if err != nil {
		s.metrics.RecordVaultOperation("get", false)
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, "Message not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to read message: %v", err), http.StatusInternalServerError)
		}
		return
	}
	s.metrics.RecordVaultOperation("get", true)

	fields, err := codec.DecodeFields(data, desc)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to decode message: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, MessageResponse{ID: id, Type: desc.Name, Fields: fields})
}

// handleDeleteMessage removes one stored message.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	desc, ok := s.lookupType(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.vault.Delete(desc.Name, id); err != nil {
		s.metrics.RecordVaultOperation("delete", false)
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, "Message not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to delete message: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordVaultOperation("delete", true)
	sendSuccess(w, map[string]string{"message": "Message deleted"})
}

// lookupType resolves the {name} path parameter against the registry and
// writes the error response itself when the type is unknown.
func (s *Server) lookupType(w http.ResponseWriter, r *http.Request) (*schema.RecordDescriptor, bool) {
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "Type name is required", http.StatusBadRequest)
		return nil, false
	}
	desc, ok := s.registry.Lookup(name)
	if !ok {
		sendError(w, fmt.Sprintf("Unknown type: %s", name), http.StatusNotFound)
		return nil, false
	}
	return desc, true
}
