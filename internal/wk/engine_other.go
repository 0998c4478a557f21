//go:build !darwin

package wk

// Default returns the platform engine. Only darwin has one.
func Default() (Engine, error) {
	return nil, ErrUnavailable
}
