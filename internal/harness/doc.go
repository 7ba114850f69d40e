// Package harness drives regression tests against the variant-store
// toolchain.
//
// A run walks a catalog of test cases in order. Each case loads a dataset
// into a scratch datastore workspace through one of the external loader
// tools, then replays the case's declared queries against it. Every stage's
// captured stdout is digested and compared against a golden file; the first
// failing stage aborts the rest of the run so later cases never run against
// a store left in a bad state.
//
// # Catalog Format
//
// The built-in catalog (BuiltinCatalog) can be replaced by a YAML file with
// the following structure:
//
//	tests:
//	  - name: t0_1_2
//	    loader: native
//	    callset_mapping_file: inputs/callsets/t0_1_2.json
//	    compress_array: true
//	    load_golden: golden_outputs/t0_1_2_loading
//	    query_params:
//	      - column_range: [0, 1000000000]
//	        golden:
//	          calls: golden_outputs/t0_1_2_calls_at_0
//	          vcf: golden_outputs/t0_1_2_vcf_at_0
//
// Loader kinds: native, jvm-load, jvm-stream, jvm-stream-iterators (the
// stream kinds additionally require stream_mapping_file). Query types:
// calls, variants, vcf, batched_vcf, java_vcf. A query type absent from a
// param's golden map is not exercised for that param; an entry without
// load_golden runs its load unverified.
//
// # Failure Protocol
//
// Failures print fixed single-line identifications on stderr:
//
//	Loader test: <name> failed
//	Loader stdout mismatch for test: <name>
//	Query test: <name>-<type> failed
//	Mismatch in query test: <name>-<type>
//
// Mismatches additionally dump the golden and actual output between
// =======Golden output:======= / =======Test output:======= markers.
// Downstream tooling greps for these lines; their wording is load-bearing.
//
// # Determinism
//
// Stages run strictly sequentially in catalog order. Generated config
// documents are byte-stable for identical inputs, so reruns against
// unchanged tools and fixtures produce identical digests.
package harness
