// Package tokens resolves user-supplied token references (symbols or
// addresses) into canonical on-chain mints.
//
// Resolution consults, in order: the address itself (authoritative chain
// lookup), the curated registry, and the aggregator's fuzzy search. The
// curated registry ships embedded in the binary and can be extended with
// a YAML overlay file.
package tokens

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

//go:embed tokens.csv
var curatedCSV []byte

// TokenInfo is a resolved token: its mint address and decimal precision.
// Immutable once produced.
type TokenInfo struct {
	Address  solana.PublicKey
	Decimals uint8
}

// Registry maps lower-cased symbols to curated token info. Curated data
// is authoritative: a registry hit bypasses remote search entirely.
type Registry map[string]TokenInfo

// LoadRegistry parses the embedded curated list. Rows with a malformed
// address or decimals are skipped rather than failing the whole load.
func LoadRegistry() (Registry, error) {
	return parseCSV(curatedCSV)
}

func parseCSV(data []byte) (Registry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing token registry: %w", err)
	}

	reg := make(Registry, len(records))
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 3 {
			continue
		}
		symbol, address, decimalsStr := rec[0], rec[1], rec[2]
		if symbol == "" || address == "" || decimalsStr == "" {
			continue
		}
		decimals, err := strconv.Atoi(strings.TrimSpace(decimalsStr))
		if err != nil || decimals < 0 || decimals > 255 {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
		if err != nil {
			continue
		}
		reg[strings.ToLower(symbol)] = TokenInfo{Address: pk, Decimals: uint8(decimals)}
	}
	return reg, nil
}

// overlayFile is the YAML shape of a registry overlay.
type overlayFile struct {
	Tokens []overlayEntry `yaml:"tokens"`
}

type overlayEntry struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int    `yaml:"decimals"`
}

// ApplyOverlayFile merges entries from a YAML file into the registry,
// overriding curated entries with the same symbol. Invalid entries are
// rejected, not skipped: an operator-provided overlay should be correct.
func (r Registry) ApplyOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading registry overlay: %w", err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing registry overlay: %w", err)
	}

	for _, e := range overlay.Tokens {
		if e.Symbol == "" {
			return fmt.Errorf("registry overlay entry missing symbol")
		}
		if e.Decimals < 0 || e.Decimals > 255 {
			return fmt.Errorf("registry overlay %q: invalid decimals %d", e.Symbol, e.Decimals)
		}
		pk, err := solana.PublicKeyFromBase58(e.Address)
		if err != nil {
			return fmt.Errorf("registry overlay %q: invalid address %q: %w", e.Symbol, e.Address, err)
		}
		r[strings.ToLower(e.Symbol)] = TokenInfo{Address: pk, Decimals: uint8(e.Decimals)}
	}
	return nil
}

// Lookup returns the curated entry for a symbol, case-insensitively.
func (r Registry) Lookup(symbol string) (TokenInfo, bool) {
	info, ok := r[strings.ToLower(symbol)]
	return info, ok
}

// IsAddress reports whether s is syntactically a valid public key.
func IsAddress(s string) bool {
	_, err := solana.PublicKeyFromBase58(s)
	return err == nil
}
