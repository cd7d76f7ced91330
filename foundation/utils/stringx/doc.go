// Package stringx provides string helpers used across the pnc tools.
//
// Package: stringx
// Title: String Utilities
// Description: Unicode-aware helpers for blank checks, truncation, padding and
//              line handling.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Trimmed to the helpers in use
package stringx
