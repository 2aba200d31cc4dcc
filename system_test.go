package liveesg

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystem(t *testing.T) {
	t.Run("create new system", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "esg_db")
		sys, err := NewSystem(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, sys)
		defer sys.Close()

		assert.NotNil(t, sys.DocumentRepository())
		assert.NotNil(t, sys.ChunkRepository())
		assert.NotNil(t, sys.IndicatorRepository())
		assert.NotNil(t, sys.ScoreRepository())
		assert.NotNil(t, sys.Queue())
		assert.NotNil(t, sys.Provider())
		assert.NotNil(t, sys.Catalog())
	})

	t.Run("in-memory needs no path", func(t *testing.T) {
		sys, err := NewSystem("", WithInMemory(), WithMockAI())
		require.NoError(t, err)
		require.NoError(t, sys.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		sys, err := NewSystem(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, sys)
	})
}

func TestSystem_Close(t *testing.T) {
	sys, err := NewSystem(t.TempDir(), WithMockAI())
	require.NoError(t, err)
	require.NotNil(t, sys)

	assert.NoError(t, sys.Close())
}

func TestSystem_FactoryMethods(t *testing.T) {
	sys, err := NewSystem("", WithInMemory(), WithMockAI())
	require.NoError(t, err)
	defer sys.Close()

	t.Run("can create ingestor", func(t *testing.T) {
		ingestor, err := sys.NewIngestor()
		require.NoError(t, err)
		require.NotNil(t, ingestor)
	})

	t.Run("can create embed handler", func(t *testing.T) {
		handler, err := sys.NewEmbedHandler()
		require.NoError(t, err)
		require.NotNil(t, handler)
	})

	t.Run("can create extract handler", func(t *testing.T) {
		handler, err := sys.NewExtractHandler()
		require.NoError(t, err)
		require.NotNil(t, handler)
	})

	t.Run("can create aggregator", func(t *testing.T) {
		aggregator, err := sys.NewAggregator()
		require.NoError(t, err)
		require.NotNil(t, aggregator)
	})

	t.Run("can create runner", func(t *testing.T) {
		runner, err := sys.NewRunner()
		require.NoError(t, err)
		require.NotNil(t, runner)
	})
}

// The facade must produce a runner whose stages actually connect: one source
// in, one stored score out, all against the in-memory mock stack.
func TestSystem_EndToEnd(t *testing.T) {
	sys, err := NewSystem("", WithInMemory(), WithMockAI())
	require.NoError(t, err)
	defer sys.Close()

	runner, err := sys.NewRunner(
		pipeline.WithWorkers(2),
		pipeline.WithStagePollInterval(2*time.Millisecond),
		pipeline.WithMonitor(pipeline.MonitorConfig{
			PollInterval:  2 * time.Millisecond,
			ConfirmWindow: 25 * time.Millisecond,
		}))
	require.NoError(t, err)

	source := filepath.Join(t.TempDir(), "acme-2023.txt")
	require.NoError(t, os.WriteFile(source,
		[]byte("E-GHG-INT and S-INJ-RATE and G-BRD-IND were all disclosed."), 0644))

	report, err := runner.Run(context.Background(), []pipeline.Source{
		{Location: source, Company: "Acme Corp", ReportYear: 2023},
	})
	require.NoError(t, err)
	require.Len(t, report.Scores, 1)

	stored, err := sys.ScoreRepository().GetScore(context.Background(),
		core.DocumentKeyFor("Acme Corp", 2023))
	require.NoError(t, err)
	assert.Len(t, stored.Pillars, 3)
}

func TestIndicatorSpecs(t *testing.T) {
	sys, err := NewSystem("", WithInMemory(), WithMockAI())
	require.NoError(t, err)
	defer sys.Close()

	specs := indicatorSpecs(sys.Catalog())
	require.Len(t, specs, sys.Catalog().Len())

	byCode := make(map[string]int, len(specs))
	for i, spec := range specs {
		byCode[spec.Code] = i
	}

	// Unit splits out of the catalog name's trailing parenthetical.
	ghg := specs[byCode["E-GHG-INT"]]
	assert.Equal(t, "GHG emissions intensity", ghg.Name)
	assert.Equal(t, "tCO2e per $M revenue", ghg.Unit)
	assert.Contains(t, ghg.Guidance, "Lower is better")

	// No trailing parenthetical leaves the unit empty.
	audit := specs[byCode["G-AUD-DAYS"]]
	assert.Equal(t, "Days from year end to audited filing", audit.Name)
	assert.Empty(t, audit.Unit)
	assert.Contains(t, audit.Guidance, "Lower is better")

	// Direct percentages need no guidance.
	renewables := specs[byCode["E-ENE-REN"]]
	assert.Equal(t, "Renewable energy share of consumption", renewables.Name)
	assert.Equal(t, "%", renewables.Unit)
	assert.Empty(t, renewables.Guidance)
}
