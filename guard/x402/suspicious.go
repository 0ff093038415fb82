// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package x402

import (
	"net"
	"net/url"
	"strings"
)

// officialDomains maps a provider name to the registrable domains it
// legitimately serves payments from. A host that mentions a provider
// but resolves outside its domains is treated as a typosquat.
var officialDomains = map[string][]string{
	"coinbase":   {"coinbase.com", "cb.id"},
	"stripe":     {"stripe.com", "stripe.network"},
	"paypal":     {"paypal.com", "paypal.me"},
	"openai":     {"openai.com"},
	"anthropic":  {"anthropic.com"},
	"cloudflare": {"cloudflare.com"},
}

// SuspiciousURLReasons returns the reasons a payment URL looks
// hostile: IP-literal host, punycode lookalike, or a provider name on
// a domain the provider does not own. Empty means clean.
func SuspiciousURLReasons(raw string) []string {
	var reasons []string

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return []string{"URL does not parse"}
	}
	host := strings.ToLower(u.Hostname())

	if net.ParseIP(host) != nil {
		reasons = append(reasons, "IP-literal host")
	}

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			reasons = append(reasons, "punycode hostname")
			break
		}
	}

	for provider, domains := range officialDomains {
		if !strings.Contains(host, provider) {
			continue
		}
		if !hostUnderAny(host, domains) {
			reasons = append(reasons, "hostname impersonates "+provider)
		}
	}

	return reasons
}

// hostUnderAny reports whether host equals or is a subdomain of any of
// the given registrable domains.
func hostUnderAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
