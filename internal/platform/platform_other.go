//go:build !linux

package platform

// New reports that no platform backend exists for this OS.
func New(cfg Config) (*Platform, error) {
	return nil, ErrUnsupported
}
