package forkchoice

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prysmaticlabs/ghost/config/params"
	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/ghost/testing/require"
)

func runScenario(t *testing.T, file string) (*Builder, []*StepResult) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	sc, err := LoadScenario(filepath.Join("testdata", file))
	require.NoError(t, err)
	bb, err := NewBuilder(ctx, sc)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, bb.Close(ctx)) })
	results, err := bb.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(sc.Steps))
	return bb, results
}

func TestScenario_SplitVote(t *testing.T) {
	bb, results := runScenario(t, "split_vote.yaml")
	outcomes := make([]string, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, r.Outcome)
	}
	assert.Equal(t, []string{
		"applied", "applied", "applied", "invalid", "invalid", "invalid",
		"applied", "applied", "deferred", "deferred", "invalid", "passed",
		"applied", "applied", "passed",
	}, outcomes)
	a, ok := bb.Root("a")
	require.True(t, ok)
	assert.Equal(t, a, results[1].Root)
	assert.Error(t, results[3].Err)
}

func TestScenario_Justification(t *testing.T) {
	_, results := runScenario(t, "justification.yaml")
	last := results[len(results)-1]
	assert.Equal(t, "invalid", last.Outcome)
}

func TestBuilder_FailedCheck(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	sc, err := ParseScenario([]byte(`
validators: 2
steps:
  - tick: 6
  - block: {name: a, slot: 1, parent: genesis}
  - checks: {head: genesis}
`))
	require.NoError(t, err)
	bb, err := NewBuilder(ctx, sc)
	require.NoError(t, err)
	results, err := bb.Run(ctx)
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, err.Error(), "head a, want genesis")
	assert.Len(t, results, 3)
}

func TestBuilder_UnexpectedOutcome(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	sc, err := ParseScenario([]byte(`
validators: 2
steps:
  - block: {name: a, slot: 1, parent: genesis}
`))
	require.NoError(t, err)
	bb, err := NewBuilder(ctx, sc)
	require.NoError(t, err)
	_, err = bb.Run(ctx)
	require.ErrorIs(t, err, ErrUnexpectedOutcome, "block from the future was expected to import")
}

func TestBuilder_UnknownReference(t *testing.T) {
	params.SetupMinimalTestConfig(t)
	ctx := context.Background()
	sc, err := ParseScenario([]byte(`
validators: 2
steps:
  - block: {name: a, slot: 1, parent: nope}
`))
	require.NoError(t, err)
	bb, err := NewBuilder(ctx, sc)
	require.NoError(t, err)
	_, err = bb.Run(ctx)
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "no validators", yaml: "steps: []", want: "at least one validator"},
		{name: "unknown key", yaml: "validators: 1\nslots: 3", want: "could not parse scenario"},
		{name: "two actions in a step", yaml: "validators: 1\nsteps:\n  - tick: 1\n    checks: {head: genesis}", want: "exactly one"},
		{name: "empty step", yaml: "validators: 1\nsteps:\n  - {}", want: "exactly one"},
		{name: "unnamed block", yaml: "validators: 1\nsteps:\n  - block: {slot: 1, parent: genesis}", want: "needs a name"},
		{name: "bad outcome", yaml: "validators: 1\nsteps:\n  - attestation: {slot: 1, block: genesis, outcome: maybe}", want: "unknown attestation outcome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
