package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavelayer/mlme/internal/wire/mac"
)

func TestParseMAC(t *testing.T) {
	m, err := ParseMAC("02:00:5e:10:00:01")
	require.NoError(t, err)
	assert.Equal(t, mac.MAC{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}, m)
}

func TestParseMACRejectsGarbage(t *testing.T) {
	_, err := ParseMAC("not-a-mac")
	assert.Error(t, err)
}

func TestParseMACRejects64BitAddress(t *testing.T) {
	_, err := ParseMAC("02:00:5e:10:00:00:00:01")
	assert.Error(t, err)
}
