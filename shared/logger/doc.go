// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

// Package logger provides structured JSON logging for all gateway
// components. Field values named after common PII keys are redacted
// before the entry is written, and string fields are truncated so log
// sinks never receive full validated content.
package logger
