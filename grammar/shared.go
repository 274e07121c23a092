package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// parseIntegerLiteral accepts the lexer's "0x..." or decimal Integer token
// text and returns the 256-bit value it denotes.
func parseIntegerLiteral(text string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(text)
	if err == nil {
		return v, nil
	}
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		v, herr := uint256.FromHex(text)
		if herr != nil {
			return nil, fmt.Errorf("invalid hex literal %q: %w", text, herr)
		}
		return v, nil
	}
	return nil, fmt.Errorf("invalid integer literal %q", text)
}

// parseDataBytes decodes a data section's body, written as one contiguous
// 0x-prefixed hex blob (spec §3.1, "ordered list of data sections").
func parseDataBytes(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	s := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		b, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid data bytes %q: %w", text, err)
		}
		out[i] = byte(b)
	}
	return out, nil
}

// formatDataBytes is parseDataBytes's inverse, used by the printer.
func formatDataBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("0x")
	for _, by := range data {
		fmt.Fprintf(&b, "%02x", by)
	}
	return b.String()
}

// parseVarName splits a lexed "%base" or "%base:version" token into its
// base name and version number.
func parseVarName(token string) (base string, version int, err error) {
	s := strings.TrimPrefix(token, "%")
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		v, verr := strconv.Atoi(s[idx+1:])
		if verr != nil {
			return "", 0, fmt.Errorf("invalid variable version in %q", token)
		}
		return s[:idx], v, nil
	}
	return s, 0, nil
}

// formatVarName is parseVarName's inverse.
func formatVarName(base string, version int) string {
	if version == 0 {
		return "%" + base
	}
	return fmt.Sprintf("%%%s:%d", base, version)
}
