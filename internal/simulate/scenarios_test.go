package simulate

import (
	"testing"

	"github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTestScenariosPicksWorstOfEachShape(t *testing.T) {
	scenarios, err := New().GenerateTestScenarios(starTopology())
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, simulation.KindNodeDown, scenarios[0].Kind)
	assert.Equal(t, "a", scenarios[0].Device, "the hub causes the worst single-node failure in a star")

	assert.Equal(t, simulation.KindLinkDown, scenarios[1].Kind)
	assert.Equal(t, simulation.KindMultiLink, scenarios[2].Kind)
	assert.Len(t, scenarios[2].Edges, 2)
}
