// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package txguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnlimitedApproval(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   bool
	}{
		{"negative one", "-1", true},
		{"uint256 max decimal", maxUint256Decimal, true},
		{"hex all f lower", "0x" + strings.Repeat("f", 64), true},
		{"hex all f upper", "0x" + strings.Repeat("F", 64), true},
		{"ten to the thirty", "1" + strings.Repeat("0", 30), true},
		{"just above floor", "2" + strings.Repeat("0", 30), true},
		{"just below floor", strings.Repeat("9", 30), false},
		{"large hex above floor", "0x" + strings.Repeat("f", 30), true},
		{"ordinary amount", "1000000", false},
		{"zero", "0", false},
		{"empty", "", false},
		{"garbage", "lots", false},
		{"short hex", "0xff", false},
		{"whitespace padded", "  -1  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnlimitedApproval(tt.amount))
		})
	}
}
