// Package synth builds the JSON configuration documents consumed by the
// external loader and query tools.
//
// Synthesis is purely functional: a fixed immutable baseline document is
// merged with a per-call override structure, and the result is returned as
// an in-memory value. Callers serialize and write the document themselves.
// Nothing in this package mutates shared state, so two calls with identical
// inputs always produce byte-identical documents. This matters because the
// harness relies on deterministic tool output, and a template leaking
// overrides from one test into the next would poison every comparison that
// follows.
package synth

import (
	"encoding/json"
	"fmt"
)

// ColumnPartition describes one entry of a loader document's partition list.
// Begin is the first genomic column owned by the partition. Workspace and
// Array are stamped by MakeLoaderConfig, so catalog data leaves them empty.
type ColumnPartition struct {
	Begin     int64  `json:"begin" yaml:"begin"`
	Workspace string `json:"workspace" yaml:"workspace,omitempty"`
	Array     string `json:"array" yaml:"array,omitempty"`
}

// ColumnRange is a half-open [begin, end) interval of genomic column
// coordinates. It serializes as a two-element JSON array.
type ColumnRange [2]int64

// Begin returns the inclusive start of the range.
func (r ColumnRange) Begin() int64 { return r[0] }

// End returns the exclusive end of the range.
func (r ColumnRange) End() int64 { return r[1] }

// LoaderDocument mirrors the loader tool's JSON configuration. Field order
// follows the wire document so serialized output reads like the documents
// engineers already know.
type LoaderDocument struct {
	RowBasedPartitioning       bool              `json:"row_based_partitioning"`
	ColumnPartitions           []ColumnPartition `json:"column_partitions"`
	CallsetMappingFile         string            `json:"callset_mapping_file"`
	VidMappingFile             string            `json:"vid_mapping_file"`
	SizePerColumnPartition     int64             `json:"size_per_column_partition"`
	TreatDeletionsAsIntervals  bool              `json:"treat_deletions_as_intervals"`
	VCFHeaderFilename          string            `json:"vcf_header_filename"`
	ReferenceGenome            string            `json:"reference_genome"`
	NumParallelVCFFiles        int               `json:"num_parallel_vcf_files"`
	DoPingPongBuffering        bool              `json:"do_ping_pong_buffering"`
	OffloadVCFOutputProcessing bool              `json:"offload_vcf_output_processing"`
	DiscardVCFIndex            bool              `json:"discard_vcf_index"`
	ProduceCombinedVCF         bool              `json:"produce_combined_vcf"`
	ProduceTileDBArray         bool              `json:"produce_tiledb_array"`
	DeleteAndCreateTileDBArray bool              `json:"delete_and_create_tiledb_array"`
	CompressTileDBArray        bool              `json:"compress_tiledb_array"`
	SegmentSize                int64             `json:"segment_size"`
	NumCellsPerTile            int               `json:"num_cells_per_tile"`
}

// QueryDocument mirrors the query tool's JSON configuration.
type QueryDocument struct {
	Workspace         string          `json:"workspace"`
	Array             string          `json:"array"`
	VCFHeaderFilename []string        `json:"vcf_header_filename"`
	QueryColumnRanges [][]ColumnRange `json:"query_column_ranges"`
	QueryRowRanges    [][]ColumnRange `json:"query_row_ranges"`
	ReferenceGenome   string          `json:"reference_genome"`
	QueryAttributes   []string        `json:"query_attributes"`
}

// LoaderOverrides carries the per-test values merged over the loader
// baseline. Zero-valued fields keep the baseline defaults.
type LoaderOverrides struct {
	// CallsetMappingFile points at the sample-to-source mapping the loader
	// ingests. Every catalog entry sets it.
	CallsetMappingFile string

	// VidMappingFile optionally replaces the default variant-schema mapping.
	VidMappingFile string

	// ColumnPartitions, when non-empty, replaces the baseline's single
	// partition wholesale rather than merging with it. The first partition
	// is afterwards stamped with the run workspace and array name, exactly
	// as the default partition would be.
	ColumnPartitions []ColumnPartition

	// SegmentSize, when positive, replaces the baseline segment size. The
	// harness stamps its configured load segment size here for every
	// generated document.
	SegmentSize int64

	// CompressArray enables array compression for tests exercising the
	// compressed storage path.
	CompressArray bool
}

// QueryOverrides carries the per-query values merged over the query
// baseline.
type QueryOverrides struct {
	// ColumnRange restricts the query to a column interval. Nil keeps the
	// baseline whole-genome range.
	ColumnRange *ColumnRange

	// VCFOutput marks VCF-shaped queries. The projected attribute list is
	// then forced to the canonical order returned by VCFQueryAttributes,
	// regardless of Attributes: VCF output is compared byte-for-byte
	// downstream, so field order must never drift with the caller.
	VCFOutput bool

	// Attributes optionally replaces the projected attribute list for
	// non-VCF queries. Ignored when VCFOutput is set.
	Attributes []string
}

// baselineLoader returns a fresh copy of the loader document baseline.
// Returning a new value per call keeps the baseline immutable: no caller
// can reach the template through a retained slice.
func baselineLoader() LoaderDocument {
	return LoaderDocument{
		RowBasedPartitioning:       false,
		ColumnPartitions:           []ColumnPartition{{Begin: 0}},
		CallsetMappingFile:         "",
		VidMappingFile:             "inputs/vid.json",
		SizePerColumnPartition:     3000,
		TreatDeletionsAsIntervals:  true,
		VCFHeaderFilename:          "inputs/template_vcf_header.vcf",
		ReferenceGenome:            "inputs/chr1_10MB.fasta.gz",
		NumParallelVCFFiles:        1,
		DoPingPongBuffering:        false,
		OffloadVCFOutputProcessing: false,
		DiscardVCFIndex:            true,
		ProduceCombinedVCF:         true,
		ProduceTileDBArray:         true,
		DeleteAndCreateTileDBArray: true,
		CompressTileDBArray:        false,
		SegmentSize:                1048576,
		NumCellsPerTile:            3,
	}
}

// baselineQuery returns a fresh copy of the query document baseline.
func baselineQuery() QueryDocument {
	return QueryDocument{
		Workspace:         "",
		Array:             "",
		VCFHeaderFilename: []string{"inputs/template_vcf_header.vcf"},
		QueryColumnRanges: [][]ColumnRange{{{0, 10000000000}}},
		QueryRowRanges:    [][]ColumnRange{{{0, 2}}},
		ReferenceGenome:   "inputs/chr1_10MB.fasta.gz",
		QueryAttributes: []string{
			"REF", "ALT", "BaseQRankSum", "MQ", "RAW_MQ", "MQ0",
			"ClippingRankSum", "MQRankSum", "ReadPosRankSum", "DP", "GT",
			"GQ", "SB", "AD", "PL", "DP_FORMAT", "MIN_DP", "PID", "PGT",
		},
	}
}

// VCFQueryAttributes returns the canonical attribute-projection order for
// VCF-shaped queries. The returned slice is a fresh copy.
func VCFQueryAttributes() []string {
	return []string{
		"END", "REF", "ALT", "BaseQRankSum", "ClippingRankSum", "MQRankSum",
		"ReadPosRankSum", "MQ", "RAW_MQ", "MQ0", "DP", "GT", "GQ", "SB",
		"AD", "PL", "PGT", "PID", "MIN_DP", "DP_FORMAT",
	}
}

// MakeLoaderConfig merges the loader baseline with per-test overrides and
// binds the document to the given datastore workspace and array name.
//
// A custom partition list replaces the baseline's single partition rather
// than merging with it; in both cases the first partition receives the
// workspace/array stamp. The workspace path is not checked for existence
// here. Malformed overrides are not detected either: they surface later as
// a loader process failure, which the control loop treats as fatal.
func MakeLoaderConfig(workspace, testName string, ov LoaderOverrides) LoaderDocument {
	doc := baselineLoader()
	if len(ov.ColumnPartitions) > 0 {
		doc.ColumnPartitions = append([]ColumnPartition(nil), ov.ColumnPartitions...)
	}
	doc.ColumnPartitions[0].Workspace = workspace
	doc.ColumnPartitions[0].Array = testName
	doc.CallsetMappingFile = ov.CallsetMappingFile
	if ov.VidMappingFile != "" {
		doc.VidMappingFile = ov.VidMappingFile
	}
	if ov.SegmentSize > 0 {
		doc.SegmentSize = ov.SegmentSize
	}
	if ov.CompressArray {
		doc.CompressTileDBArray = true
	}
	return doc
}

// MakeQueryConfig merges the query baseline with per-query overrides and
// binds the document to the given datastore workspace and array name.
//
// For VCF-shaped queries the attribute projection is always the canonical
// VCFQueryAttributes order; any caller-supplied Attributes value is
// ignored in that case.
func MakeQueryConfig(workspace, testName string, ov QueryOverrides) QueryDocument {
	doc := baselineQuery()
	doc.Workspace = workspace
	doc.Array = testName
	if ov.ColumnRange != nil {
		doc.QueryColumnRanges = [][]ColumnRange{{*ov.ColumnRange}}
	}
	switch {
	case ov.VCFOutput:
		doc.QueryAttributes = VCFQueryAttributes()
	case len(ov.Attributes) > 0:
		doc.QueryAttributes = append([]string(nil), ov.Attributes...)
	}
	return doc
}

// Marshal serializes a document with the 4-space indentation the external
// tools' own sample configs use. The output is deterministic for a given
// document value.
func Marshal(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal config document: %w", err)
	}
	return data, nil
}
