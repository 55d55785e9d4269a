package addressing

import (
	"net"
	"testing"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonIPv4(t *testing.T) {
	_, err := New("2001:db8::/32")
	assert.Error(t, err)
}

func TestNewRejectsTooSmallRange(t *testing.T) {
	_, err := New("10.0.0.0/31")
	assert.Error(t, err)
}

func TestNextLinkSubnetAdvancesDeterministically(t *testing.T) {
	a, err := New("10.0.0.0/30")
	require.NoError(t, err)

	s, err := a.NextLinkSubnet()
	require.NoError(t, err)
	assert.Equal(t, net.IPv4(10, 0, 0, 1).To4(), s.IPA.To4())
	assert.Equal(t, net.IPv4(10, 0, 0, 2).To4(), s.IPB.To4())
	assert.Equal(t, 0, a.Remaining())

	_, err = a.NextLinkSubnet()
	require.Error(t, err)
	var exhausted *domerrors.AddressSpaceExhaustedError
	assert.ErrorAs(t, err, &exhausted)
}

func TestNextLinkSubnetReplayIsIdentical(t *testing.T) {
	a1, err := New(DefaultLinkRange)
	require.NoError(t, err)
	a2, err := New(DefaultLinkRange)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		s1, err1 := a1.NextLinkSubnet()
		s2, err2 := a2.NextLinkSubnet()
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.True(t, s1.IPA.Equal(s2.IPA))
		assert.True(t, s1.IPB.Equal(s2.IPB))
	}
}

func TestRouterIDWrapsAfter254(t *testing.T) {
	assert.Equal(t, "10.1.1.1", RouterID(0))
	assert.Equal(t, "10.254.1.1", RouterID(253))
	assert.Equal(t, "10.1.1.1", RouterID(254))
}

func TestWildcard(t *testing.T) {
	mask := net.IPv4(255, 255, 255, 252)
	w := Wildcard(mask)
	assert.Equal(t, net.IPv4(0, 0, 0, 3).To4(), w.To4())
}
