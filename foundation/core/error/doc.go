// Package error provides structured error handling for the pnc toolchain.
//
// Package: error
// Title: pnc Error Handling Framework
// Description: This package implements a structured error type with error codes,
//              severity levels, contextual details and stack traces. Shells (CLI,
//              REPL, evaluation server, history store) use it to report failures
//              consistently; the language core itself reports faults as AST values.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: Front-end codes, errors.As based lookups
//
// Usage:
//   import mdwerror "github.com/msto63/pnc/foundation/core/error"
//
//   err := mdwerror.New("unexpected token").
//     WithCode(mdwerror.CodeSyntax).
//     WithDetail("position", 4)
//
//   wrapped := mdwerror.Wrap(err, "evaluate input").
//     WithOperation("pn.Evaluate")
//
//   if mdwerror.HasCode(wrapped, mdwerror.CodeSyntax) {
//     // report as user error
//   }
package error
