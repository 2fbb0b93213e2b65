package tokens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_CuratedEntries(t *testing.T) {
	reg, err := LoadRegistry()
	require.NoError(t, err)

	usdc, ok := reg.Lookup("USDC")
	require.True(t, ok)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", usdc.Address.String())
	assert.Equal(t, uint8(6), usdc.Decimals)

	sol, ok := reg.Lookup("sol")
	require.True(t, ok)
	assert.Equal(t, "So11111111111111111111111111111111111111112", sol.Address.String())
	assert.Equal(t, uint8(9), sol.Decimals)

	trump, ok := reg.Lookup("TRUMP")
	require.True(t, ok)
	assert.Equal(t, "6p6xgHyF7AeE6TZkSmFsko444wqoP15icUSqi2jfGiPN", trump.Address.String())
}

func TestLookup_CaseInsensitive(t *testing.T) {
	reg, err := LoadRegistry()
	require.NoError(t, err)

	lower, okLower := reg.Lookup("usdc")
	upper, okUpper := reg.Lookup("USDC")
	mixed, okMixed := reg.Lookup("UsDc")
	require.True(t, okLower)
	require.True(t, okUpper)
	require.True(t, okMixed)
	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, mixed)
}

func TestParseCSV_SkipsMalformedRows(t *testing.T) {
	data := []byte(`symbol,address,decimals
GOOD,EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v,6
BADADDR,not-a-pubkey,6
BADDEC,EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v,nine
SHORT,x
`)
	reg, err := parseCSV(data)
	require.NoError(t, err)
	assert.Len(t, reg, 1)

	_, ok := reg.Lookup("GOOD")
	assert.True(t, ok)
}

func TestApplyOverlayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tokens:
  - symbol: MYTOKEN
    address: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
    decimals: 4
  - symbol: USDC
    address: So11111111111111111111111111111111111111112
    decimals: 9
`), 0o600))

	reg, err := LoadRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.ApplyOverlayFile(path))

	added, ok := reg.Lookup("mytoken")
	require.True(t, ok)
	assert.Equal(t, uint8(4), added.Decimals)

	// Overlay entries override curated ones.
	usdc, ok := reg.Lookup("usdc")
	require.True(t, ok)
	assert.Equal(t, "So11111111111111111111111111111111111111112", usdc.Address.String())
}

func TestApplyOverlayFile_RejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tokens:
  - symbol: BROKEN
    address: not-a-pubkey
    decimals: 6
`), 0o600))

	reg := Registry{}
	err := reg.ApplyOverlayFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROKEN")
}

func TestApplyOverlayFile_MissingFile(t *testing.T) {
	reg := Registry{}
	assert.Error(t, reg.ApplyOverlayFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.False(t, IsAddress("USDC"))
	assert.False(t, IsAddress(""))
}
