//go:build !ostdebug

package Trees

const debugChecks = false
