// Package api provides factory implementations for dependency injection
package api

import (
	"github.com/ssargent/protostruct/pkg/schema"
	"github.com/ssargent/protostruct/pkg/storage"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// CreateVaultOpener creates a vault opener
func (f *DefaultServerFactory) CreateVaultOpener() VaultOpener {
	return &DefaultVaultOpener{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(registry *schema.DynamicRegistry, vault IVault, config ServerConfig) error {
	return StartServer(registry, vault, config)
}

// DefaultVaultOpener opens a pebble-backed vault
type DefaultVaultOpener struct{}

// OpenVault opens (or creates) a vault at the given directory
func (o *DefaultVaultOpener) OpenVault(dataDir string) (IVault, error) {
	return storage.Open(dataDir)
}
