package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/synth"
)

func TestBuiltinCatalogIsValid(t *testing.T) {
	require.NoError(t, validateCatalog(BuiltinCatalog()))
}

func TestBuiltinCatalogOrder(t *testing.T) {
	want := []string{
		"t0_1_2",
		"t0_1_2_csv",
		"t0_overlapping",
		"t0_overlapping_at_12202",
		"t6_7_8",
		"java_t0_1_2",
		"java_buffer_stream_t0_1_2",
		"java_buffer_stream_multi_contig_t0_1_2",
		"test_new_fields",
		"test_info_combine_ops0",
		"test_info_combine_ops1",
		"t0_1_2_coverage",
	}
	var got []string
	for _, tc := range BuiltinCatalog() {
		got = append(got, tc.Name)
	}
	assert.Equal(t, want, got)
}

func TestBuiltinCatalogEntries(t *testing.T) {
	byName := make(map[string]TestCase)
	for _, tc := range BuiltinCatalog() {
		byName[tc.Name] = tc
	}

	t012 := byName["t0_1_2"]
	assert.Equal(t, invoke.LoadNative, t012.Loader)
	assert.True(t, t012.CompressArray, "t0_1_2 loads into a compressed array")
	require.Len(t, t012.QueryParams, 2)
	assert.Equal(t, synth.ColumnRange{0, 1000000000}, t012.QueryParams[0].Range)
	assert.Equal(t, synth.ColumnRange{12150, 1000000000}, t012.QueryParams[1].Range)
	assert.Len(t, t012.QueryParams[0].Golden, 5)

	// vcf and batched_vcf converge on the same golden output.
	assert.Equal(t,
		t012.QueryParams[0].Golden[invoke.QueryVCF],
		t012.QueryParams[0].Golden[invoke.QueryBatchedVCF])

	csv := byName["t0_1_2_csv"]
	assert.False(t, csv.CompressArray)
	// The CSV flavor must converge on the same goldens as t0_1_2.
	assert.Equal(t, t012.LoadGolden, csv.LoadGolden)
	assert.Equal(t, t012.QueryParams, csv.QueryParams)

	partitioned := byName["t0_overlapping_at_12202"]
	require.Len(t, partitioned.ColumnPartitions, 1)
	assert.Equal(t, int64(12202), partitioned.ColumnPartitions[0].Begin)
	assert.Empty(t, partitioned.QueryParams)

	stream := byName["java_buffer_stream_t0_1_2"]
	assert.Equal(t, invoke.LoadJVMStream, stream.Loader)
	assert.Equal(t, "inputs/callsets/t0_1_2_buffer_mapping.json", stream.StreamMappingFile)

	iter := byName["java_buffer_stream_multi_contig_t0_1_2"]
	assert.Equal(t, invoke.LoadJVMStreamIterators, iter.Loader)

	t678 := byName["t6_7_8"]
	require.Len(t, t678.QueryParams, 2)
	// No java_vcf flavor for t6_7_8.
	assert.NotContains(t, t678.QueryParams[0].Golden, invoke.QueryJavaVCF)

	newFields := byName["test_new_fields"]
	assert.Equal(t, "inputs/vid_MLEAC_MLEAF.json", newFields.VidMappingFile)
	assert.Empty(t, newFields.QueryParams)

	cov := byName["t0_1_2_coverage"]
	require.Len(t, cov.QueryParams, 1)
	assert.Equal(t, map[invoke.QueryType]string{
		invoke.QueryCalls:    "golden_outputs/t0_1_2_coverage_calls_at_0",
		invoke.QueryVariants: "golden_outputs/t0_1_2_coverage_variants_at_0",
	}, cov.QueryParams[0].Golden)
}

func TestBuiltinCatalogReturnsFreshCopies(t *testing.T) {
	first := BuiltinCatalog()
	first[0].Name = "mutated"
	first[0].QueryParams[0].Golden[invoke.QueryCalls] = "mutated"

	second := BuiltinCatalog()
	assert.Equal(t, "t0_1_2", second[0].Name)
	assert.Equal(t, "golden_outputs/t0_1_2_calls_at_0", second[0].QueryParams[0].Golden[invoke.QueryCalls])
}
