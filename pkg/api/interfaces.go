// Package api provides interfaces for dependency injection
package api

import "github.com/ssargent/protostruct/pkg/schema"

// VaultOpener opens the message vault backing the server
type VaultOpener interface {
	// OpenVault opens (or creates) a vault at the given directory
	OpenVault(dataDir string) (IVault, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer starts the API server with the given configuration
	StartServer(registry *schema.DynamicRegistry, vault IVault, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter

	// CreateVaultOpener creates a vault opener
	CreateVaultOpener() VaultOpener
}
