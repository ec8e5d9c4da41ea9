//go:build tmldebug

package markup

// debugAssertions enables internal consistency checks. Build with
// -tags tmldebug to turn them on.
const debugAssertions = true
