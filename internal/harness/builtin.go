package harness

import (
	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/synth"
)

// t012QueryParams returns the query phases shared by every catalog entry
// that loads the t0_1_2 dataset. The java-driven loaders reuse the same
// goldens on purpose: all load paths must converge on identical store
// contents.
func t012QueryParams() []QueryParam {
	return []QueryParam{
		{
			Range: synth.ColumnRange{0, 1000000000},
			Golden: map[invoke.QueryType]string{
				invoke.QueryCalls:      "golden_outputs/t0_1_2_calls_at_0",
				invoke.QueryVariants:   "golden_outputs/t0_1_2_variants_at_0",
				invoke.QueryVCF:        "golden_outputs/t0_1_2_vcf_at_0",
				invoke.QueryBatchedVCF: "golden_outputs/t0_1_2_vcf_at_0",
				invoke.QueryJavaVCF:    "golden_outputs/java_t0_1_2_vcf_at_0",
			},
		},
		{
			Range: synth.ColumnRange{12150, 1000000000},
			Golden: map[invoke.QueryType]string{
				invoke.QueryCalls:      "golden_outputs/t0_1_2_calls_at_12150",
				invoke.QueryVariants:   "golden_outputs/t0_1_2_variants_at_12150",
				invoke.QueryVCF:        "golden_outputs/t0_1_2_vcf_at_12150",
				invoke.QueryBatchedVCF: "golden_outputs/t0_1_2_vcf_at_12150",
				invoke.QueryJavaVCF:    "golden_outputs/java_t0_1_2_vcf_at_12150",
			},
		},
	}
}

// BuiltinCatalog returns the built-in test cases in execution order. The
// returned slice and everything it references are fresh copies; callers
// may mutate them freely.
func BuiltinCatalog() []TestCase {
	return []TestCase{
		{
			Name:               "t0_1_2",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t0_1_2.json",
			CompressArray:      true,
			LoadGolden:         "golden_outputs/t0_1_2_loading",
			QueryParams:        t012QueryParams(),
		},
		{
			Name:               "t0_1_2_csv",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t0_1_2_csv.json",
			LoadGolden:         "golden_outputs/t0_1_2_loading",
			QueryParams:        t012QueryParams(),
		},
		{
			Name:               "t0_overlapping",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t0_overlapping.json",
			LoadGolden:         "golden_outputs/t0_overlapping",
			QueryParams: []QueryParam{
				{
					Range: synth.ColumnRange{12202, 1000000000},
					Golden: map[invoke.QueryType]string{
						invoke.QueryVCF: "golden_outputs/t0_overlapping_at_12202",
					},
				},
			},
		},
		{
			Name:               "t0_overlapping_at_12202",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t0_overlapping.json",
			ColumnPartitions:   []synth.ColumnPartition{{Begin: 12202}},
			LoadGolden:         "golden_outputs/t0_overlapping_at_12202",
		},
		{
			Name:               "t6_7_8",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t6_7_8.json",
			LoadGolden:         "golden_outputs/t6_7_8_loading",
			QueryParams: []QueryParam{
				{
					Range: synth.ColumnRange{0, 1000000000},
					Golden: map[invoke.QueryType]string{
						invoke.QueryCalls:      "golden_outputs/t6_7_8_calls_at_0",
						invoke.QueryVariants:   "golden_outputs/t6_7_8_variants_at_0",
						invoke.QueryVCF:        "golden_outputs/t6_7_8_vcf_at_0",
						invoke.QueryBatchedVCF: "golden_outputs/t6_7_8_vcf_at_0",
					},
				},
				{
					Range: synth.ColumnRange{8029500, 1000000000},
					Golden: map[invoke.QueryType]string{
						invoke.QueryCalls:      "golden_outputs/t6_7_8_calls_at_8029500",
						invoke.QueryVariants:   "golden_outputs/t6_7_8_variants_at_8029500",
						invoke.QueryVCF:        "golden_outputs/t6_7_8_vcf_at_8029500",
						invoke.QueryBatchedVCF: "golden_outputs/t6_7_8_vcf_at_8029500",
					},
				},
			},
		},
		{
			Name:               "java_t0_1_2",
			Loader:             invoke.LoadJVM,
			CallsetMappingFile: "inputs/callsets/t0_1_2.json",
			LoadGolden:         "golden_outputs/t0_1_2_loading",
			QueryParams:        t012QueryParams(),
		},
		{
			Name:               "java_buffer_stream_t0_1_2",
			Loader:             invoke.LoadJVMStream,
			CallsetMappingFile: "inputs/callsets/t0_1_2_buffer.json",
			StreamMappingFile:  "inputs/callsets/t0_1_2_buffer_mapping.json",
			LoadGolden:         "golden_outputs/t0_1_2_loading",
			QueryParams:        t012QueryParams(),
		},
		{
			Name:               "java_buffer_stream_multi_contig_t0_1_2",
			Loader:             invoke.LoadJVMStreamIterators,
			CallsetMappingFile: "inputs/callsets/t0_1_2_buffer.json",
			StreamMappingFile:  "inputs/callsets/t0_1_2_buffer_mapping.json",
			LoadGolden:         "golden_outputs/t0_1_2_loading",
			QueryParams:        t012QueryParams(),
		},
		{
			Name:               "test_new_fields",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t6_7_8.json",
			VidMappingFile:     "inputs/vid_MLEAC_MLEAF.json",
			LoadGolden:         "golden_outputs/t6_7_8_new_field_gatk.vcf",
		},
		{
			Name:               "test_info_combine_ops0",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/info_ops.json",
			VidMappingFile:     "inputs/vid_info_ops0.json",
			LoadGolden:         "golden_outputs/info_ops0.vcf",
		},
		{
			Name:               "test_info_combine_ops1",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/info_ops.json",
			VidMappingFile:     "inputs/vid_info_ops1.json",
			LoadGolden:         "golden_outputs/info_ops1.vcf",
		},
		{
			Name:               "t0_1_2_coverage",
			Loader:             invoke.LoadNative,
			CallsetMappingFile: "inputs/callsets/t0_1_2_coverage.json",
			LoadGolden:         "golden_outputs/t0_1_2_coverage",
			QueryParams: []QueryParam{
				{
					Range: synth.ColumnRange{0, 1000000000},
					Golden: map[invoke.QueryType]string{
						invoke.QueryCalls:    "golden_outputs/t0_1_2_coverage_calls_at_0",
						invoke.QueryVariants: "golden_outputs/t0_1_2_coverage_variants_at_0",
					},
				},
			},
		},
	}
}
