// structc encodes and decodes binary records described by a layout document.
//
// Usage:
//
//	structc size    --schema layouts.yaml [--struct name | --all]
//	structc inspect --schema layouts.yaml [--struct name] [--field path]
//	structc encode  --schema layouts.yaml [--in values.json] [--out record.bin] [--hex]
//	structc decode  --schema layouts.yaml [--in record.bin] [--offset n] [--format yaml]
//
// Values are exchanged as JSON, YAML or CBOR documents mapping field names
// to values. Nested layouts appear as nested objects and repeated nested
// layouts as arrays of objects.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-cstruct/cstruct"
	"github.com/robert-malhotra/go-cstruct/internal/schemafile"
)

var errUsage = errors.New("usage error")

type config struct {
	schema    string
	name      string
	bigEndian bool
	def       string
	in        string
	out       string
	format    string
	hex       bool
	offset    int
	verbose   bool
	all       bool
	field     string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cfg config
	flagSet := pflag.NewFlagSet("structc", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&cfg.schema, "schema", "s", "", "layout document (.yaml, .yml, .json or .jsonc)")
	flagSet.StringVar(&cfg.name, "struct", "", "layout to use (default: first layout in the document)")
	flagSet.BoolVar(&cfg.bigEndian, "big-endian", false, "use big-endian byte order")
	flagSet.StringVar(&cfg.def, "default", "", "numeric default for fields declared without a value")
	flagSet.StringVarP(&cfg.in, "in", "i", "-", "input file, - for stdin")
	flagSet.StringVarP(&cfg.out, "out", "o", "-", "output file, - for stdout")
	flagSet.StringVarP(&cfg.format, "format", "f", "json", "value format: json, yaml or cbor")
	flagSet.BoolVar(&cfg.hex, "hex", false, "read or write binary data as hex text")
	flagSet.IntVar(&cfg.offset, "offset", 0, "byte offset to start decoding at")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log codec activity to stderr")
	flagSet.BoolVar(&cfg.all, "all", false, "size: print the byte length of every layout in the document")
	flagSet.StringVar(&cfg.field, "field", "", "inspect: show only this field, as a dotted path")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("%w: expected exactly one command", errUsage)
	}
	if cfg.schema == "" {
		return fmt.Errorf("%w: --schema is required", errUsage)
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	doc, opts, err := loadDocument(&cfg, logger)
	if err != nil {
		return err
	}
	if rest[0] == "size" && cfg.all {
		return sizeAll(stdout, doc, opts)
	}

	codec, err := buildStruct(&cfg, doc, opts, logger)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "size":
		_, err := fmt.Fprintln(stdout, codec.ByteLength())
		return err
	case "inspect":
		if cfg.field != "" {
			return inspectField(stdout, codec.Schema(), cfg.field)
		}
		return inspect(stdout, codec)
	case "encode":
		return encode(&cfg, codec, stdin, stdout, logger)
	case "decode":
		return decode(&cfg, codec, stdin, stdout, logger)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `structc encodes and decodes binary records described by a layout document.

Usage:
  structc <command> --schema FILE [flags]

Commands:
  size     print the serialized byte length of the layout (--all: every layout)
  inspect  print the normalized layout (--field: one field or nested mapping)
  encode   read values and write the binary record
  decode   read a binary record and write its values

Flags:
%s`, flagSet.FlagUsages())
}

func loadDocument(cfg *config, logger *slog.Logger) (*schemafile.Document, []cstruct.Option, error) {
	doc, err := schemafile.ReadFile(cfg.schema)
	if err != nil {
		return nil, nil, err
	}

	opts := []cstruct.Option{
		cstruct.WithLittleEndian(!cfg.bigEndian),
		cstruct.WithLogger(logger),
	}
	if cfg.def != "" {
		if _, err := strconv.ParseFloat(cfg.def, 64); err != nil {
			return nil, nil, fmt.Errorf("%w: --default must be a number, got %q", errUsage, cfg.def)
		}
		opts = append(opts, cstruct.WithDefault(json.Number(cfg.def)))
	}
	return doc, opts, nil
}

func buildStruct(cfg *config, doc *schemafile.Document, opts []cstruct.Option, logger *slog.Logger) (*cstruct.Struct, error) {
	name := cfg.name
	if name == "" {
		name = doc.Names()[0]
	}

	codec, err := doc.Build(name, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded layout",
		"schema", cfg.schema,
		"struct", name,
		"byte_length", codec.ByteLength(),
		"fingerprint", codec.Fingerprint().Short())
	return codec, nil
}

func sizeAll(w io.Writer, doc *schemafile.Document, opts []cstruct.Option) error {
	codecs, err := doc.BuildAll(opts...)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range doc.Names() {
		fmt.Fprintf(tw, "%s\t%d\n", name, codecs[name].ByteLength())
	}
	return tw.Flush()
}

func inspect(w io.Writer, codec *cstruct.Struct) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tLENGTH\tPREFIX\tBYTES")
	writeFields(tw, codec.Schema(), "")
	if err := tw.Flush(); err != nil {
		return err
	}

	order := "little-endian"
	if codec.ByteOrder() == binary.ByteOrder(binary.BigEndian) {
		order = "big-endian"
	}
	fmt.Fprintf(w, "\nbyte length:     %d\n", codec.ByteLength())
	fmt.Fprintf(w, "byte order:      %s\n", order)
	fmt.Fprintf(w, "default:         %v\n", codec.Default())
	fmt.Fprintf(w, "self-describing: %t\n", codec.Schema().SelfDescribing())
	_, err := fmt.Fprintf(w, "fingerprint:     %s\n", codec.Fingerprint())
	return err
}

// inspectField prints the row of one field, or of every field below a
// nested mapping, addressed by a dotted path such as "pos.x".
func inspectField(w io.Writer, schema *cstruct.Schema, path string) error {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		sub, ok := schema.Sub(part)
		if !ok {
			return fmt.Errorf("%w: no nested mapping %q in %q", errUsage, part, path)
		}
		schema = sub
	}

	last := parts[len(parts)-1]
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tLENGTH\tPREFIX\tBYTES")
	if leaf, ok := schema.Leaf(last); ok {
		writeLeaf(tw, leaf, path)
	} else if sub, ok := schema.Sub(last); ok {
		writeFields(tw, sub, path+".")
	} else {
		return fmt.Errorf("%w: no field %q", errUsage, path)
	}
	return tw.Flush()
}

func writeFields(w io.Writer, schema *cstruct.Schema, prefix string) {
	for _, f := range schema.Fields() {
		path := prefix + f.Name
		if f.Sub != nil {
			writeFields(w, f.Sub, path+".")
			continue
		}

		writeLeaf(w, f.Leaf, path)
	}
}

func writeLeaf(w io.Writer, l *cstruct.Leaf, path string) {
	typ := l.Type.String()
	if l.IsStruct() {
		typ = fmt.Sprintf("struct(%d)", l.ElementSize())
	}
	pfx := "-"
	size := l.Length * l.ElementSize()
	if l.Vary {
		pfx = l.Prefix.String()
		size += l.PrefixSize()
	}
	fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", path, typ, l.Length, pfx, size)
	if l.IsStruct() {
		writeFields(w, l.Struct.Schema(), path+"[].")
	}
}

func encode(cfg *config, codec *cstruct.Struct, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	data, err := readInput(cfg.in, stdin)
	if err != nil {
		return err
	}
	values, err := unmarshalValues(cfg.format, data)
	if err != nil {
		return err
	}

	buf, err := codec.Write(values)
	if err != nil {
		return err
	}
	logger.Info("encoded record", "bytes", len(buf))

	if cfg.hex {
		buf = []byte(hex.EncodeToString(buf) + "\n")
	}
	return writeOutput(cfg.out, stdout, buf)
}

func decode(cfg *config, codec *cstruct.Struct, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	data, err := readInput(cfg.in, stdin)
	if err != nil {
		return err
	}
	if cfg.hex {
		text := strings.Join(strings.Fields(string(data)), "")
		if data, err = hex.DecodeString(text); err != nil {
			return fmt.Errorf("decoding hex input: %w", err)
		}
	}

	values, err := codec.Read(data, cfg.offset)
	if err != nil {
		return err
	}
	logger.Info("decoded record", "offset", cfg.offset, "consumed", codec.Consumed())

	out, err := marshalValues(cfg.format, values)
	if err != nil {
		return err
	}
	return writeOutput(cfg.out, stdout, out)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func unmarshalValues(format string, data []byte) (map[string]any, error) {
	values := make(map[string]any)
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&values)
	case "yaml":
		err = yaml.Unmarshal(data, &values)
	case "cbor":
		err = cborDecMode.Unmarshal(data, &values)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", errUsage, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s values: %w", format, err)
	}
	return values, nil
}

func marshalValues(format string, values map[string]any) ([]byte, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(plain(values), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case "yaml":
		return yaml.Marshal(plain(values))
	case "cbor":
		return cborEncMode.Marshal(values)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", errUsage, format)
	}
}

// plain rewrites byte slices as number lists so text formats show them
// element by element instead of as base64.
func plain(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	case []byte:
		out := make([]uint16, len(v))
		for i, b := range v {
			out[i] = uint16(b)
		}
		return out
	}
	return v
}
