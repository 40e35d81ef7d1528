//go:build release

package assert

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	_ = cond
	_ = format
	_ = args
}
