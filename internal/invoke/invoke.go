// Package invoke assembles and executes the external tool command lines the
// harness drives: the native loader and query binaries and the JVM test
// programs. Command construction is a closed grammar over the loader kinds
// and query types below; nothing else in the codebase builds an argv.
package invoke

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/kballard/go-shellquote"
)

// Tool names resolved under the configured bin directory, and the JVM entry
// classes launched for the java-driven catalog entries.
const (
	loaderBinary = "vcf2tiledb"
	queryBinary  = "gt_mpi_gather"

	jvmTestClass   = "TestGenomicsDB"
	jvmStreamClass = "TestBufferStreamGenomicsDBImporter"
)

// streamIteratorArgs is passed verbatim to the stream importer's iterator
// mode. The values tune its buffering and batching.
var streamIteratorArgs = []string{"1024", "0", "0", "100", "true"}

// LoaderKind selects which tool loads a catalog entry's data into the store.
type LoaderKind string

const (
	// LoadNative runs the native loader binary.
	LoadNative LoaderKind = "native"

	// LoadJVM runs the JVM test program in load mode.
	LoadJVM LoaderKind = "jvm-load"

	// LoadJVMStream runs the JVM buffer-stream importer.
	LoadJVMStream LoaderKind = "jvm-stream"

	// LoadJVMStreamIterators runs the JVM buffer-stream importer in its
	// chunked iterator mode.
	LoadJVMStreamIterators LoaderKind = "jvm-stream-iterators"
)

// Valid reports whether k is one of the defined loader kinds.
func (k LoaderKind) Valid() bool {
	switch k {
	case LoadNative, LoadJVM, LoadJVMStream, LoadJVMStreamIterators:
		return true
	}
	return false
}

// Stream reports whether k consumes a stream-to-file mapping document in
// addition to the loader configuration.
func (k LoaderKind) Stream() bool {
	return k == LoadJVMStream || k == LoadJVMStreamIterators
}

// QueryType tags one query flavor of a catalog entry. Each type maps to a
// fixed tool and argument shape; the set is closed.
type QueryType string

const (
	// QueryCalls prints one line per variant call.
	QueryCalls QueryType = "calls"

	// QueryVariants prints merged variant records.
	QueryVariants QueryType = "variants"

	// QueryVCF produces combined GVCF output.
	QueryVCF QueryType = "vcf"

	// QueryBatchedVCF produces combined GVCF output with batched reads.
	QueryBatchedVCF QueryType = "batched_vcf"

	// QueryJavaVCF produces GVCF output through the JVM test program.
	QueryJavaVCF QueryType = "java_vcf"
)

// QueryTypes returns every query type in execution order. The order is part
// of the harness contract: stages run and are recorded in this sequence.
func QueryTypes() []QueryType {
	return []QueryType{QueryCalls, QueryVariants, QueryVCF, QueryBatchedVCF, QueryJavaVCF}
}

// Valid reports whether t is one of the defined query types.
func (t QueryType) Valid() bool {
	switch t {
	case QueryCalls, QueryVariants, QueryVCF, QueryBatchedVCF, QueryJavaVCF:
		return true
	}
	return false
}

// VCFOutput reports whether t emits VCF-shaped output. These types force the
// canonical VCF attribute projection in their query documents.
func (t QueryType) VCFOutput() bool {
	return t == QueryVCF || t == QueryBatchedVCF || t == QueryJavaVCF
}

// JVM reports whether t runs through the JVM test program instead of the
// native query binary.
func (t QueryType) JVM() bool { return t == QueryJavaVCF }

// Command is a fully resolved tool invocation: an executable path and its
// argument vector. Path may be relative; the runner resolves it against its
// working directory.
type Command struct {
	Path string
	Args []string
}

// String renders the command as a shell-quoted line suitable for logs.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Path}, c.Args...)...)
}

// Result carries a finished tool invocation's captured stdout and exit code.
// Stderr is never captured; the runner passes it through.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Succeeded reports whether the tool exited zero.
func (r Result) Succeeded() bool { return r.ExitCode == 0 }

// Runner executes commands. The harness depends on this interface so tests
// substitute a scripted implementation for the real tools.
type Runner interface {
	// Run executes cmd and returns its captured stdout and exit code. A
	// nonzero exit is reported through Result, not the error; the error is
	// reserved for failures to execute at all.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Toolchain locates the external tools. BinDir holds the native binaries and
// may be relative to the runner's working directory. Java is the JVM
// launcher; Classpath, when set, is handed to it via -cp.
type Toolchain struct {
	BinDir    string
	Java      string
	Classpath string
}

func (tc Toolchain) java() string {
	if tc.Java == "" {
		return "java"
	}
	return tc.Java
}

func (tc Toolchain) javaArgs(class string, rest ...string) []string {
	args := make([]string, 0, 3+len(rest))
	if tc.Classpath != "" {
		args = append(args, "-cp", tc.Classpath)
	}
	args = append(args, class)
	return append(args, rest...)
}

// LoadCommand builds the load invocation for one catalog entry. loaderPath
// is the generated loader configuration; streamMapping is the stream-to-file
// mapping document and is required for the stream kinds.
func (tc Toolchain) LoadCommand(kind LoaderKind, loaderPath, streamMapping string) (Command, error) {
	if kind.Stream() && streamMapping == "" {
		return Command{}, fmt.Errorf("loader kind %s requires a stream mapping file", kind)
	}
	switch kind {
	case LoadNative:
		return Command{
			Path: filepath.Join(tc.BinDir, loaderBinary),
			Args: []string{loaderPath},
		}, nil
	case LoadJVM:
		return Command{
			Path: tc.java(),
			Args: tc.javaArgs(jvmTestClass, "-load", loaderPath),
		}, nil
	case LoadJVMStream:
		return Command{
			Path: tc.java(),
			Args: tc.javaArgs(jvmStreamClass, loaderPath, streamMapping),
		}, nil
	case LoadJVMStreamIterators:
		rest := append([]string{"-iterators", loaderPath, streamMapping}, streamIteratorArgs...)
		return Command{
			Path: tc.java(),
			Args: tc.javaArgs(jvmStreamClass, rest...),
		}, nil
	default:
		return Command{}, fmt.Errorf("unknown loader kind: %q", kind)
	}
}

// QueryCommand builds the query invocation for one query stage. The native
// query binary reads both the loader and query documents and honors the
// buffer segment size; the JVM flavor takes the two documents positionally.
func (tc Toolchain) QueryCommand(t QueryType, segmentSize int64, loaderPath, queryPath string) (Command, error) {
	if t.JVM() {
		return Command{
			Path: tc.java(),
			Args: tc.javaArgs(jvmTestClass, "-query", loaderPath, queryPath),
		}, nil
	}

	args := []string{"-s", strconv.FormatInt(segmentSize, 10), "-l", loaderPath, "-j", queryPath}
	switch t {
	case QueryCalls:
		args = append(args, "--print-calls")
	case QueryVariants:
		// No extra arguments.
	case QueryVCF:
		args = append(args, "--produce-Broad-GVCF")
	case QueryBatchedVCF:
		args = append(args, "--produce-Broad-GVCF", "-p", "128")
	default:
		return Command{}, fmt.Errorf("unknown query type: %q", t)
	}
	return Command{Path: filepath.Join(tc.BinDir, queryBinary), Args: args}, nil
}
