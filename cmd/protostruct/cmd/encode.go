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

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <type>",
	Short: "Encode a JSON field mapping to wire bytes",
	Long: `Encode a JSON object to binary wire bytes using a type from the
schema file. Input is read from --in or stdin; output is written to
--out or stdout.

Example:
  protostruct encode User --schema schema.yaml --in user.json --out user.bin
  echo '{"name": "Alice", "age": 30}' | protostruct encode User -s schema.yaml > user.bin`,
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

		var fields map[string]interface{}
		if err := json.NewDecoder(in).Decode(&fields); err != nil {
			return err
		}

		data, err := codec.EncodeFields(desc, fields)
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

		_, err = out.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().String("in", "", "Read JSON input from file instead of stdin")
	encodeCmd.Flags().String("out", "", "Write wire bytes to file instead of stdout")
}
