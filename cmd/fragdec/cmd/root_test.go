package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeTMax(t *testing.T) {
	require := require.New(t)
	e := envelope{mMax: 100, maxRedundancyPercent: 50}
	require.Equal(50, e.tMax())
}

func TestEnvelopeValidate(t *testing.T) {
	require := require.New(t)
	e := envelope{mMax: 10, minFragSize: 2, maxFragSize: 8, maxRedundancyPercent: 50}

	require.NoError(e.validate(10, 4, 5))

	require.Error(e.validate(11, 4, 0), "m above m-max")
	require.Error(e.validate(4, 1, 0), "frag-size below min-frag-size")
	require.Error(e.validate(4, 9, 0), "frag-size above max-frag-size")
	require.Error(e.validate(4, 4, 6), "t above t-max")
}
