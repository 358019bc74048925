//go:build !streamcastdebug

package broadcast

// strictContracts turns contract violations into panics. Build with
// -tags streamcastdebug to enable it.
const strictContracts = false
