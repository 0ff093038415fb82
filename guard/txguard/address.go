// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// IsHexAddress reports whether s has the EVM address syntactic form:
// 0x followed by 40 hex digits.
func IsHexAddress(s string) bool {
	if len(s) != 42 {
		return false
	}
	if s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ChecksumAddress returns the EIP-55 mixed-case form of a syntactically
// valid address. The input case is ignored.
func ChecksumAddress(addr string) string {
	lower := strings.ToLower(addr[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	sum := h.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := sum[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// ChecksumStatus describes the EIP-55 state of an address.
type ChecksumStatus int

const (
	// ChecksumValid means the mixed-case form matches EIP-55.
	ChecksumValid ChecksumStatus = iota

	// ChecksumAbsent means the address is all-lower or all-upper, so no
	// checksum was encoded. Reported as a warning, never a denial.
	ChecksumAbsent

	// ChecksumInvalid means the address is mixed-case but does not match
	// its EIP-55 form.
	ChecksumInvalid
)

// VerifyChecksum classifies an address against EIP-55. The address must
// already satisfy IsHexAddress.
func VerifyChecksum(addr string) ChecksumStatus {
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return ChecksumAbsent
	}
	if addr == ChecksumAddress(addr) {
		return ChecksumValid
	}
	return ChecksumInvalid
}
