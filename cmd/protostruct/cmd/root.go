/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/protostruct/pkg/di"
	"github.com/ssargent/protostruct/pkg/schema"
)

// container holds the injected dependencies, set by main before Execute.
var container *di.Container

// SetContainer injects the dependency container into the cmd package
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "protostruct",
	Short: "protostruct - schema-driven binary codec",
	Long: `protostruct encodes and decodes record messages in a compact
Protocol-Buffers style wire format, driven by YAML schema files
instead of a schema compiler step.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global schema file flag
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Path to YAML schema file")
}

// loadSchemaType resolves a named type from the --schema file.
func loadSchemaType(cmd *cobra.Command, typeName string) (*schema.RecordDescriptor, error) {
	schemaPath, _ := cmd.Flags().GetString("schema")
	if schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	registry, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	desc, ok := registry.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("type %s not found in %s", typeName, schemaPath)
	}
	return desc, nil
}
