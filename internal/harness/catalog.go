package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/synth"
)

// QueryParam defines one query phase of a test case: a column range plus
// the golden files its query stages are verified against.
type QueryParam struct {
	// Range restricts the queries to the column interval [begin, end).
	Range synth.ColumnRange `yaml:"column_range"`

	// Golden maps query types to golden output paths, relative to the
	// harness base directory. A query type absent from the map is not
	// exercised for this param.
	Golden map[invoke.QueryType]string `yaml:"golden"`
}

// TestCase is one catalog entry: a named dataset load plus the query
// phases run against it. The name doubles as the datastore array name.
type TestCase struct {
	// Name uniquely identifies the test case.
	Name string `yaml:"name"`

	// Loader selects the tool that performs the load. Empty means native.
	Loader invoke.LoaderKind `yaml:"loader,omitempty"`

	// CallsetMappingFile is the sample-to-source mapping the loader
	// ingests, relative to the base directory.
	CallsetMappingFile string `yaml:"callset_mapping_file"`

	// VidMappingFile optionally replaces the default variant-schema
	// mapping.
	VidMappingFile string `yaml:"vid_mapping_file,omitempty"`

	// StreamMappingFile is the stream-to-file mapping consumed by the
	// stream loader kinds.
	StreamMappingFile string `yaml:"stream_mapping_file,omitempty"`

	// ColumnPartitions optionally replaces the loader baseline's single
	// partition. Workspace and array are stamped at run time and must be
	// left empty here.
	ColumnPartitions []synth.ColumnPartition `yaml:"column_partitions,omitempty"`

	// CompressArray loads into a compressed datastore array.
	CompressArray bool `yaml:"compress_array,omitempty"`

	// LoadGolden is the golden file for the loader's stdout. Empty means
	// the load runs unverified.
	LoadGolden string `yaml:"load_golden,omitempty"`

	// QueryParams lists the query phases run after a successful load.
	QueryParams []QueryParam `yaml:"query_params,omitempty"`
}

// catalogFile is the external catalog document shape.
type catalogFile struct {
	Tests []TestCase `yaml:"tests"`
}

// LoadCatalog reads and parses a catalog YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or fails validation. Entries without an explicit loader kind default to
// the native loader.
func LoadCatalog(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range doc.Tests {
		if doc.Tests[i].Loader == "" {
			doc.Tests[i].Loader = invoke.LoadNative
		}
	}

	if err := validateCatalog(doc.Tests); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return doc.Tests, nil
}

// Filter returns the test cases whose names match the glob pattern, in
// catalog order. An empty pattern selects everything.
func Filter(tests []TestCase, pattern string) ([]TestCase, error) {
	if pattern == "" {
		return tests, nil
	}
	var out []TestCase
	for _, tc := range tests {
		ok, err := filepath.Match(pattern, tc.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

// validateCatalog checks that required fields are present and valid.
func validateCatalog(tests []TestCase) error {
	if len(tests) == 0 {
		return fmt.Errorf("tests list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(tests))
	for i, tc := range tests {
		if tc.Name == "" {
			return fmt.Errorf("tests[%d]: name is required", i)
		}
		if seen[tc.Name] {
			return fmt.Errorf("tests[%d]: duplicate test name %q", i, tc.Name)
		}
		seen[tc.Name] = true

		if !tc.Loader.Valid() {
			return fmt.Errorf("tests[%d]: unknown loader kind %q", i, tc.Loader)
		}
		if tc.CallsetMappingFile == "" {
			return fmt.Errorf("tests[%d]: callset_mapping_file is required", i)
		}
		if tc.Loader.Stream() && tc.StreamMappingFile == "" {
			return fmt.Errorf("tests[%d]: stream_mapping_file is required for loader kind %s", i, tc.Loader)
		}
		if !tc.Loader.Stream() && tc.StreamMappingFile != "" {
			return fmt.Errorf("tests[%d]: stream_mapping_file is only valid for stream loader kinds", i)
		}

		for j, p := range tc.ColumnPartitions {
			if p.Begin < 0 {
				return fmt.Errorf("tests[%d]: column_partitions[%d]: begin must be non-negative", i, j)
			}
			if p.Workspace != "" || p.Array != "" {
				return fmt.Errorf("tests[%d]: column_partitions[%d]: workspace and array must be empty", i, j)
			}
		}

		for j, qp := range tc.QueryParams {
			if err := validateQueryParam(i, j, &qp); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateQueryParam validates a single query param of a test case.
func validateQueryParam(testIndex, paramIndex int, qp *QueryParam) error {
	if qp.Range.Begin() < 0 {
		return fmt.Errorf("tests[%d]: query_params[%d]: column_range begin must be non-negative", testIndex, paramIndex)
	}
	if qp.Range.End() <= qp.Range.Begin() {
		return fmt.Errorf("tests[%d]: query_params[%d]: column_range end must be greater than begin", testIndex, paramIndex)
	}
	if len(qp.Golden) == 0 {
		return fmt.Errorf("tests[%d]: query_params[%d]: golden map is required and must be non-empty", testIndex, paramIndex)
	}
	for qt, path := range qp.Golden {
		if !qt.Valid() {
			return fmt.Errorf("tests[%d]: query_params[%d]: unknown query type %q", testIndex, paramIndex, qt)
		}
		if path == "" {
			return fmt.Errorf("tests[%d]: query_params[%d]: golden path for %s is required", testIndex, paramIndex, qt)
		}
	}
	return nil
}
