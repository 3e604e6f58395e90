/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/protostruct/pkg/api"
	"github.com/ssargent/protostruct/pkg/schema"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the protostruct REST API server. Registered types and stored
messages are persisted under the data directory; a schema file given
with --schema is preloaded into the type registry at startup.

Examples:
  protostruct serve --api-key=mysecretkey --port=8080
  protostruct serve --api-key=mysecretkey --data-dir=./data --schema=schema.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		schemaFile, _ := cmd.Flags().GetString("schema")

		if apiKey == "" {
			cmd.Println("Error: --api-key is required")
			return
		}
		if dataDir == "" {
			dataDir = "./data"
		}

		if container == nil {
			cmd.Println("Error: dependency container not initialized")
			os.Exit(1)
		}
		serverFactory := container.GetServerFactory()

		vault, err := serverFactory.CreateVaultOpener().OpenVault(dataDir)
		if err != nil {
			cmd.Printf("Error opening vault: %v\n", err)
			os.Exit(1)
		}
		defer vault.Close()

		config := api.ServerConfig{
			Port:       port,
			Bind:       bind,
			APIKey:     apiKey,
			DataDir:    dataDir,
			SchemaFile: schemaFile,
		}

		starter := serverFactory.CreateServerStarter()
		if err := starter.StartServer(schema.NewDynamicRegistry(), vault, config); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key for authentication (required)")
	serveCmd.Flags().String("data-dir", "./data", "Data directory for stored messages")
	if err := serveCmd.MarkFlagRequired("api-key"); err != nil {
		panic(err)
	}
}
