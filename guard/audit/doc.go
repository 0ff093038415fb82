// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package audit provides the ring-bounded audit trail every subsystem
// appends to, the shared Prometheus collectors, and the optional
// durable sinks (async queue, Postgres). No audit record ever contains
// the full validated content: at most a 200-char preview, a SHA-256 of
// the original, and structural metadata.
package audit
