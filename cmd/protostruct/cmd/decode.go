/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/protostruct/pkg/codec"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <type>",
	Short: "Decode wire bytes to a JSON field mapping",
	Long: `Decode binary wire bytes to a JSON object using a type from the
schema file. Input is read from --in or stdin; JSON is written to
--out or stdout.

Example:
  protostruct decode User --schema schema.yaml --in user.bin
  protostruct decode User -s schema.yaml < user.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := loadSchemaType(cmd, args[0])
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if path, _ := cmd.Flags().GetString("in"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}

		fields, err := codec.DecodeFields(data, desc)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().String("in", "", "Read wire bytes from file instead of stdin")
	decodeCmd.Flags().String("out", "", "Write JSON to file instead of stdout")
}
