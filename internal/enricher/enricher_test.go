package enricher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleops/settlement-enricher/internal/config"
	"github.com/settleops/settlement-enricher/internal/csvparser"
	"github.com/settleops/settlement-enricher/internal/types"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fakeStore is an in-memory Store that records every key it is asked for.
type fakeStore struct {
	data    map[string]string
	errKeys map[string]error
	calls   []string
	closed  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data:    make(map[string]string),
		errKeys: make(map[string]error),
	}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.calls = append(s.calls, key)
	if err, ok := s.errKeys[key]; ok {
		return "", false, err
	}
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

// captureReporter records every progress update it receives.
type captureReporter struct {
	updates []types.ProgressUpdate
}

func (r *captureReporter) Report(update types.ProgressUpdate) {
	r.updates = append(r.updates, update)
}

// =============================================================================
// HELPERS
// =============================================================================

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ProgressInterval = 2
	return cfg
}

func parseDataset(t *testing.T, csvText string) *types.Dataset {
	t.Helper()
	ds, err := csvparser.Parse(strings.NewReader(csvText))
	require.NoError(t, err)
	return ds
}

const sampleReport = `"Sender","Receiver","Transfer ID","Tx","Currency"
MWK
a,b,T1,c,MWK
x,y,T2,z,MWK
p,q,,r,MWK`

// =============================================================================
// PROCESS TESTS
// =============================================================================

func TestProcessStatisticsInvariant(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	store := newFakeStore()
	store.data["transferModel_in_T1"] = `{"homeTransactionId":"H1"}`
	store.errKeys["transferModel_in_T2"] = errors.New("connection reset")

	ds := parseDataset(t, sampleReport)
	e := New("in.csv", "out.csv", cfg)
	stats := e.Process(context.Background(), ds, store)

	assert.Equal(t, 3, stats.TotalDataRows)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, stats.Processed, stats.Found+stats.NotFound+stats.Errors)
}

func TestProcessAnnotatesRows(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	store := newFakeStore()
	store.data["transferModel_in_T1"] = `{"homeTransactionId":"H1"}`

	ds := parseDataset(t, sampleReport)
	New("in.csv", "out.csv", cfg).Process(context.Background(), ds, store)

	rows := ds.DataRows()
	assert.Equal(t, "H1", rows[0].Fields[cfg.OutputColumn])
	assert.Equal(t, SentinelNotFound, rows[1].Fields[cfg.OutputColumn])
	assert.Equal(t, SentinelNotFound, rows[2].Fields[cfg.OutputColumn])
	assert.Equal(t, cfg.OutputColumn, ds.Columns[len(ds.Columns)-1])
}

func TestProcessBlankTransferIdSkipsLookup(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	store := newFakeStore()

	ds := parseDataset(t, `"Sender","Transfer ID","Currency"`+"\n"+`a,   ,MWK`+"\n")
	require.Len(t, ds.DataRows(), 1)

	stats := New("in.csv", "out.csv", cfg).Process(context.Background(), ds, store)

	assert.Empty(t, store.calls)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, SentinelNotFound, ds.DataRows()[0].Fields[cfg.OutputColumn])
}

// =============================================================================
// FALLBACK KEY TESTS
// =============================================================================

func TestResolveFallbackKeyOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		data         map[string]string
		errKeys      map[string]error
		expectValue  string
		expectClass  outcome
		expectCalled []string
	}{
		{
			name:         "in key wins",
			data:         map[string]string{"transferModel_in_T9": `{"homeTransactionId":"IN"}`, "transferModel_out_T9": `{"homeTransactionId":"OUT"}`},
			expectValue:  "IN",
			expectClass:  outcomeFound,
			expectCalled: []string{"transferModel_in_T9"},
		},
		{
			name:         "falls back to out key",
			data:         map[string]string{"transferModel_out_T9": `{"homeTransactionId":"OUT"}`},
			expectValue:  "OUT",
			expectClass:  outcomeFound,
			expectCalled: []string{"transferModel_in_T9", "transferModel_out_T9"},
		},
		{
			name:         "neither key present",
			data:         map[string]string{},
			expectClass:  outcomeNotFound,
			expectCalled: []string{"transferModel_in_T9", "transferModel_out_T9"},
		},
		{
			name:         "hit without target field is a miss, no fallback",
			data:         map[string]string{"transferModel_in_T9": `{"state":"settled"}`, "transferModel_out_T9": `{"homeTransactionId":"OUT"}`},
			expectClass:  outcomeNotFound,
			expectCalled: []string{"transferModel_in_T9"},
		},
		{
			name:         "undecodable payload is an error, no fallback",
			data:         map[string]string{"transferModel_in_T9": `{not json`},
			expectClass:  outcomeError,
			expectCalled: []string{"transferModel_in_T9"},
		},
		{
			name:         "lookup failure is an error",
			data:         map[string]string{},
			errKeys:      map[string]error{"transferModel_in_T9": errors.New("timeout")},
			expectClass:  outcomeError,
			expectCalled: []string{"transferModel_in_T9"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			for k, v := range tt.data {
				store.data[k] = v
			}
			for k, err := range tt.errKeys {
				store.errKeys[k] = err
			}

			e := New("in.csv", "out.csv", testConfig())
			value, class := e.resolve(context.Background(), store, "T9")

			assert.Equal(t, tt.expectClass, class)
			assert.Equal(t, tt.expectValue, value)
			assert.Equal(t, tt.expectCalled, store.calls)
		})
	}
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func TestProcessProgressCadence(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ProgressInterval = 2

	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, "a,T"+string(rune('1'+i)))
	}
	ds := parseDataset(t, `"Sender","Transfer ID"`+"\n"+strings.Join(lines, "\n"))

	reporter := &captureReporter{}
	New("in.csv", "out.csv", cfg).WithReporter(reporter).Process(context.Background(), ds, newFakeStore())

	var percents []int
	for _, u := range reporter.updates {
		require.Equal(t, types.StageProcessing, u.Stage)
		percents = append(percents, u.Percent)
	}

	// Every 2nd row plus the final row: rows 2, 4 and 5 of 5.
	assert.Equal(t, []int{40, 80, 100}, percents)

	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestProcessProgressReaches100OnFinalRow(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ProgressInterval = 7

	ds := parseDataset(t, `"Transfer ID"`+"\nT1\nT2\nT3")

	reporter := &captureReporter{}
	New("in.csv", "out.csv", cfg).WithReporter(reporter).Process(context.Background(), ds, newFakeStore())

	require.NotEmpty(t, reporter.updates)
	assert.Equal(t, 100, reporter.updates[len(reporter.updates)-1].Percent)
}

// =============================================================================
// RUN TESTS
// =============================================================================

func writeReport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeReport(t, dir, "report.csv", sampleReport)
	output := filepath.Join(dir, "report_enriched.csv")

	store := newFakeStore()
	store.data["transferModel_in_T1"] = `{"homeTransactionId":"H1"}`
	store.data["transferModel_out_T2"] = `{"homeTransactionId":"H2"}`

	reporter := &captureReporter{}
	result := New(input, output, testConfig()).
		WithStore(store).
		WithReporter(reporter).
		Run(context.Background())

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, output, result.OutputFile)
	assert.Equal(t, 1, result.Warnings)
	assert.Equal(t, 2, result.Stats.Found)
	assert.Equal(t, 1, result.Stats.NotFound)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	expected := strings.Join([]string{
		`"Sender","Receiver","Transfer ID","Tx","Currency","Home Transaction ID"`,
		`MWK`,
		`a,b,T1,c,MWK,H1`,
		`x,y,T2,z,MWK,H2`,
		`p,q,,r,MWK,NOT_FOUND`,
	}, "\n")
	assert.Equal(t, expected, string(data))

	// Lifecycle stages in order, ending at complete.
	stages := make([]types.ProgressStage, 0, len(reporter.updates))
	for _, u := range reporter.updates {
		stages = append(stages, u.Stage)
	}
	assert.Equal(t, types.StageReading, stages[0])
	assert.Equal(t, types.StageValidating, stages[1])
	assert.Equal(t, types.StageComplete, stages[len(stages)-1])
	assert.Equal(t, 100, reporter.updates[len(reporter.updates)-1].Percent)

	// Injected stores stay open; the caller owns them.
	assert.False(t, store.closed)
}

func TestRunAllMissesAppendsSentinelColumnOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := strings.Join([]string{
		`"Sender","Transfer ID"`,
		`a,T1`,
		`b,T2`,
	}, "\n")
	input := writeReport(t, dir, "report.csv", report)
	output := filepath.Join(dir, "out.csv")

	result := New(input, output, testConfig()).
		WithStore(newFakeStore()).
		Run(context.Background())
	require.NoError(t, result.Error)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	expected := strings.Join([]string{
		`"Sender","Transfer ID","Home Transaction ID"`,
		`a,T1,NOT_FOUND`,
		`b,T2,NOT_FOUND`,
	}, "\n")
	assert.Equal(t, expected, string(data))
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeReport(t, dir, "report.csv", sampleReport)

	store := newFakeStore()
	store.data["transferModel_in_T1"] = `{"homeTransactionId":"H1"}`

	run := func(output string) []byte {
		result := New(input, output, testConfig()).
			WithStore(store).
			Run(context.Background())
		require.NoError(t, result.Error)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		return data
	}

	first := run(filepath.Join(dir, "out1.csv"))
	second := run(filepath.Join(dir, "out2.csv"))
	assert.Equal(t, first, second)
}

func TestRunMissingRequiredColumnIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeReport(t, dir, "report.csv", "A,B\n1,2\n")
	output := filepath.Join(dir, "out.csv")

	store := newFakeStore()
	result := New(input, output, testConfig()).
		WithStore(store).
		Run(context.Background())

	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.Empty(t, store.calls)

	// No partial output artifact on a fatal setup error.
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestRunUnreadableFileIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result := New(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"), testConfig()).
		WithStore(newFakeStore()).
		Run(context.Background())

	assert.False(t, result.Success)
	require.Error(t, result.Error)
}
