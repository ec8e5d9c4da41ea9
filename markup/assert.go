//go:build !tmldebug

package markup

const debugAssertions = false
