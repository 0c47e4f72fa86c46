// Package extensions implements the libfunc (extension) contract.
//
// Every libfunc answers four queries against the same template-argument list:
//
//   - Signature: argument types and, per branch, result types, plus the index
//     of the fallthrough branch. Template arguments are validated here, before
//     any semantic logic runs.
//   - RefValues: the symbolic memory transition. Given one sierra.RefValue per
//     argument, returns one RefValue per result for each branch. Never touches
//     concrete memory.
//   - Effects: the gas delta of each branch, in signature branch order.
//   - Exec: a concrete reference interpreter over memory words, used as an
//     oracle by package exec and by tests. Exec re-validates shapes on its own
//     and reports sierra.ErrUnexpectedMemoryStructure on mismatch.
//
// Libfuncs with a single outcome implement NonBranch and are adapted with
// WrapNonBranch. The Registry returned by NewRegistry is built once and is
// read-only afterwards.
package extensions
