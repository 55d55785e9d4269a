package intent

import (
	"testing"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	in, err := Parse(Raw{SiteCount: 5})
	require.NoError(t, err)

	assert.Equal(t, "intent-5-sites", in.Name)
	assert.Equal(t, RedundancyStandard, in.Redundancy)
	assert.Equal(t, ProtocolOSPF, in.Protocol)
	assert.Equal(t, DesignGoalRedundancy, in.DesignGoal)
	assert.Equal(t, 3, in.MaxHops)
	assert.False(t, in.HasPattern())
}

func TestDefaultMaxHopsScalesWithSiteCount(t *testing.T) {
	small, err := Parse(Raw{SiteCount: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, small.MaxHops)

	medium, err := Parse(Raw{SiteCount: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, medium.MaxHops)

	large, err := Parse(Raw{SiteCount: 200})
	require.NoError(t, err)
	assert.Equal(t, 8, large.MaxHops)
}

func TestParsePreservesExplicitPattern(t *testing.T) {
	in, err := Parse(Raw{SiteCount: 8, Pattern: "ring"})
	require.NoError(t, err)
	assert.True(t, in.HasPattern())
	assert.Equal(t, PatternRing, in.Pattern)
}

func TestParseRejectsUnrecognizedPattern(t *testing.T) {
	_, err := Parse(Raw{SiteCount: 8, Pattern: "star"})
	require.Error(t, err)
	var invalid *domerrors.InvalidIntentError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, "pattern", invalid.Field)
}

func TestValidateRejectsSiteCountOutOfRange(t *testing.T) {
	_, err := Parse(Raw{SiteCount: 1})
	require.Error(t, err)

	_, err = Parse(Raw{SiteCount: 501})
	require.Error(t, err)
}

func TestValidateRejectsUnrecognizedRedundancy(t *testing.T) {
	_, err := Parse(Raw{SiteCount: 5, Redundancy: "extreme"})
	require.Error(t, err)
}

func TestValidateRejectsNegativeMinConnections(t *testing.T) {
	_, err := Parse(Raw{SiteCount: 5, MinConnectionsPerSite: -1})
	require.Error(t, err)
}

func TestRedundancyTargets(t *testing.T) {
	assert.Equal(t, 1, RedundancyMinimum.Target())
	assert.Equal(t, 2, RedundancyStandard.Target())
	assert.Equal(t, 3, RedundancyHigh.Target())
	assert.Equal(t, 4, RedundancyCritical.Target())
}
