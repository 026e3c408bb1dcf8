//go:build ostdebug

package Trees

// debugChecks makes every mutation verify the whole tree.
const debugChecks = true
