//go:build streamcastdebug

package broadcast

const strictContracts = true
