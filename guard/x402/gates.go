// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package x402

import (
	"fmt"
	"net/url"
	"strings"

	"aegisgate/platform/guard/txguard"
	"aegisgate/platform/shared/types"
)

// GateCheck is the outcome of one payment gate.
type GateCheck struct {
	Gate     types.Gate `json:"gate"`
	Passed   bool       `json:"passed"`
	Failures []string   `json:"failures,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}

func (c *GateCheck) fail(reason string) {
	c.Passed = false
	c.Failures = append(c.Failures, reason)
}

// redFlagTerms in a payment description indicate social-engineering
// pressure or credential phishing.
var redFlagTerms = []string{"urgent", "seed phrase", "recovery", "password"}

// checkTruth verifies the request describes a real, well-formed
// payment: parseable HTTPS URL, known asset, positive integer amount,
// well-formed recipient.
func (p *Policy) checkTruth(req PaymentRequest) GateCheck {
	c := GateCheck{Gate: types.GateTruth, Passed: true}

	u, err := url.Parse(req.ResourceURL)
	if err != nil || u.Host == "" {
		c.fail("resource URL does not parse")
	} else if p.cfg.RequireHTTPS && u.Scheme != "https" {
		c.fail("resource URL is not HTTPS")
	}

	if !req.KnownAsset() {
		c.fail(fmt.Sprintf("asset %s is not a known contract on %s", req.Asset, req.Network))
	}

	if !isPositiveInteger(req.AmountAtomic) {
		c.fail("amount is not a positive integer")
	}

	if !txguard.IsHexAddress(req.PayTo) {
		c.fail("recipient is not a well-formed address")
	}

	return c
}

// checkHarm verifies the payment does not go somewhere hostile.
func (p *Policy) checkHarm(req PaymentRequest) GateCheck {
	c := GateCheck{Gate: types.GateHarm, Passed: true}

	if p.cfg.BlockedRecipients[strings.ToLower(req.PayTo)] {
		c.fail("recipient is blocklisted")
	}
	if p.cfg.BlockedEndpoints[endpointKey(req.ResourceURL)] {
		c.fail("endpoint is blocklisted")
	}
	for _, reason := range SuspiciousURLReasons(req.ResourceURL) {
		c.fail("suspicious URL: " + reason)
	}

	return c
}

// checkScope verifies the payment fits the spending envelope.
func (p *Policy) checkScope(req PaymentRequest, sum txguard.SpendingSummary) GateCheck {
	c := GateCheck{Gate: types.GateScope, Passed: true}
	amount := req.AmountUSD()
	limits := p.cfg.Limits

	if limits.ExceedsSingle(amount) {
		c.fail(fmt.Sprintf("amount %.2f exceeds single-payment cap %.2f", amount, limits.MaxSingle))
	}
	if sum.DailyTotal+amount > limits.MaxDailyTotal {
		c.fail(fmt.Sprintf("daily total %.2f + %.2f exceeds cap %.2f", sum.DailyTotal, amount, limits.MaxDailyTotal))
	}
	if sum.HourlyCount >= limits.MaxTxPerHour {
		c.fail("hourly payment count reached")
	}
	if sum.DailyCount >= limits.MaxTxPerDay {
		c.fail("daily payment count reached")
	}

	return c
}

// checkPurpose verifies the payment is going to a counterparty the
// wallet has dealt with, with an honest description.
func (p *Policy) checkPurpose(req PaymentRequest) GateCheck {
	c := GateCheck{Gate: types.GatePurpose, Passed: true}

	endpoint := endpointKey(req.ResourceURL)
	if !p.seenEndpoint(endpoint) {
		if p.cfg.AllowUnknownEndpoints {
			c.Warnings = append(c.Warnings, "first payment to endpoint "+endpoint)
		} else {
			c.fail("endpoint has not been paid before")
		}
	}

	recipient := strings.ToLower(req.PayTo)
	if !p.seenRecipient(recipient) {
		if p.cfg.AllowUnknownRecipients {
			c.Warnings = append(c.Warnings, "first payment to recipient "+recipient)
		} else {
			c.fail("recipient has not been paid before")
		}
	}

	desc := strings.ToLower(req.Description)
	for _, term := range redFlagTerms {
		if strings.Contains(desc, term) {
			c.fail(fmt.Sprintf("description contains red-flag term %q", term))
		}
	}

	return c
}

// isPositiveInteger reports whether s is a base-10 integer > 0.
func isPositiveInteger(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// endpointKey normalizes a resource URL to its host plus path.
func endpointKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host + u.Path)
}
