package api

import "github.com/ssargent/protostruct/pkg/storage"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TypeDefinition is the request body for registering a record type
type TypeDefinition struct {
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// FieldDefinition is one declared field of a record type
type FieldDefinition struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Repeated bool   `json:"repeated,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
}

// MessageResponse is one stored message with its decoded field values
type MessageResponse struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Fields map[string]interface{} `json:"fields"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port       int
	Bind       string
	APIKey     string
	DataDir    string
	SchemaFile string // optional YAML schema preloaded at startup
}

// IVault defines the interface for the message store operations
type IVault interface {
	Put(typeName string, data []byte) (string, error)
	Get(typeName, id string) ([]byte, error)
	Delete(typeName, id string) error
	List(typeName string) ([]storage.Entry, error)
	Close() error
}
