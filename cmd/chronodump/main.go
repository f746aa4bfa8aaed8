// chronodump is a developer tool for inspecting ChronoDB envelope captures:
// files holding a sequence of [len][type][payload] frames, as produced by
// the broker transport or recorded off a native session.
package main

import (
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
	"github.com/ajitpratap0/chronodb-go/pkg/compression"
	"github.com/ajitpratap0/chronodb-go/pkg/logger"
	"github.com/ajitpratap0/chronodb-go/pkg/mq"
	"github.com/ajitpratap0/chronodb-go/pkg/wire"
)

var version = "0.1.0"

type dumpFlags struct {
	codec    string
	asJSON   bool
	maxRows  int
	logLevel string
}

func main() {
	flags := &dumpFlags{}

	root := &cobra.Command{
		Use:     "chronodump",
		Short:   "Inspect ChronoDB envelope capture files",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: flags.logLevel, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	inspect := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode every frame in a capture and print block contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0], flags)
		},
	}
	inspect.Flags().StringVar(&flags.codec, "codec", "none", "payload compression applied to frames (none, lz4, s2, zstd)")
	inspect.Flags().BoolVar(&flags.asJSON, "json", false, "emit blocks as JSON instead of text")
	inspect.Flags().IntVar(&flags.maxRows, "max-rows", 20, "rows to print per block in text mode")
	root.AddCommand(inspect)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInspect(out io.Writer, path string, flags *dumpFlags) error {
	codec, err := compression.ParseCodec(flags.codec)
	if err != nil {
		return err
	}
	comp, err := compression.New(codec)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for frame := 0; ; frame++ {
		env, err := wire.ReadEnvelope(f)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := dumpEnvelope(out, frame, env, comp, flags); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
}

func dumpEnvelope(out io.Writer, frame int, env *wire.Envelope, comp compression.Compressor, flags *dumpFlags) error {
	payload, err := comp.Decompress(env.Payload())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "frame %d: type=%d len=%d\n", frame, env.RawType(), env.RawLen())

	switch env.RawType() {
	case mq.RawTypeBlock:
		b, err := block.FromWirePayload(payload)
		if err != nil {
			return err
		}
		return dumpBlock(out, b, flags)
	case mq.RawTypeMeta:
		fmt.Fprintf(out, "  meta: %s\n", payload)
		return nil
	default:
		fmt.Fprintf(out, "  opaque payload (%d bytes)\n", len(payload))
		return nil
	}
}

func dumpBlock(out io.Writer, b *block.Block, flags *dumpFlags) error {
	if flags.asJSON {
		raw, err := gojson.MarshalIndent(b, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s\n", raw)
		return nil
	}

	fmt.Fprintf(out, "  %d rows x %d cols\n", b.NRows(), b.NCols())
	fmt.Fprint(out, "  ")
	for i, f := range b.Schema() {
		if i > 0 {
			fmt.Fprint(out, " | ")
		}
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("col%d", i)
		}
		fmt.Fprintf(out, "%s %s", name, f.Type)
	}
	fmt.Fprintln(out)

	rows := b.Rows()
	for printed := 0; printed < flags.maxRows; printed++ {
		row, ok := rows.Next()
		if !ok {
			break
		}
		fmt.Fprint(out, "  ")
		for i, v := range row.Values() {
			if i > 0 {
				fmt.Fprint(out, " | ")
			}
			fmt.Fprint(out, v.String())
		}
		fmt.Fprintln(out)
	}
	if rows.Remaining() > 0 {
		fmt.Fprintf(out, "  ... %d more rows\n", rows.Remaining())
	}
	return nil
}
