/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ssargent/protostruct/pkg/wire"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Dump the raw wire structure of an encoded message",
	Long: `Dump an encoded message tag by tag without a schema: field number,
wire type, and raw value per unit. Useful for debugging encoder output
and inspecting messages of unknown types.

Example:
  protostruct inspect user.bin
  protostruct inspect < user.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
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
		return dumpWire(cmd.OutOrStdout(), data, 0)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// dumpWire prints one line per unit: field number, wire type, and value.
// Length-delimited payloads that themselves parse as messages are dumped
// recursively with indentation.
func dumpWire(w io.Writer, data []byte, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	for len(data) > 0 {
		number, wt, n, err := wire.ConsumeTag(data)
		if err != nil {
			return err
		}
		data = data[n:]

		switch wt {
		case wire.TypeVarint:
			v, n, err := wire.ConsumeVarint(data)
			if err != nil {
				return err
			}
			data = data[n:]
			fmt.Fprintf(w, "%sfield %d (varint): %d (signed %d)\n", indent, number, v, int64(v))

		case wire.TypeFixed64:
			v, n, err := wire.ConsumeFixed64(data)
			if err != nil {
				return err
			}
			data = data[n:]
			fmt.Fprintf(w, "%sfield %d (fixed64): 0x%016x\n", indent, number, v)

		case wire.TypeBytes:
			payload, n, err := wire.ConsumeBytes(data)
			if err != nil {
				return err
			}
			data = data[n:]
			fmt.Fprintf(w, "%sfield %d (bytes, %d): %s\n", indent, number, len(payload), preview(payload))
			if looksLikeMessage(payload) {
				if err := dumpWire(w, payload, depth+1); err != nil {
					return err
				}
			}

		default:
			return wire.Errorf("unsupported wire type %d", wt)
		}
	}
	return nil
}

// preview renders a payload as a quoted string when it is valid UTF-8, hex
// otherwise.
func preview(payload []byte) string {
	const max = 40
	truncated := payload
	suffix := ""
	if len(truncated) > max {
		truncated = truncated[:max]
		suffix = "..."
	}
	if utf8.Valid(payload) {
		return strconv.Quote(string(truncated)) + suffix
	}
	return fmt.Sprintf("%x%s", truncated, suffix)
}

// looksLikeMessage reports whether a payload parses cleanly as a sequence of
// tagged units. Heuristic only; a string like "foo" can collide.
func looksLikeMessage(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	for len(payload) > 0 {
		_, wt, n, err := wire.ConsumeTag(payload)
		if err != nil {
			return false
		}
		payload = payload[n:]
		switch wt {
		case wire.TypeVarint:
			_, n, err = wire.ConsumeVarint(payload)
		case wire.TypeFixed64:
			_, n, err = wire.ConsumeFixed64(payload)
		case wire.TypeBytes:
			_, n, err = wire.ConsumeBytes(payload)
		default:
			return false
		}
		if err != nil {
			return false
		}
		payload = payload[n:]
	}
	return true
}
