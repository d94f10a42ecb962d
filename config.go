package fragdec

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan-fragdec/fragstore"
)

// Config holds a decoder session's immutable configuration.
type Config struct {
	// M is the number of uncoded fragments the image was split into.
	M int
	// FragSize is the fragment body size in bytes.
	FragSize int
	// T is the tolerance: the maximum number of lost uncoded fragments
	// the decoder will attempt to recover.
	T int
	// Store is the external fragment block store. The decoder borrows
	// it for the lifetime of the session; it never retains a pointer
	// to caller-provided payload memory beyond a single Feed call.
	Store fragstore.Store
	// Logger receives session-level diagnostics (phase transitions,
	// rejected fragments, completion). It never affects the return
	// value of Feed and may be left nil.
	Logger *logrus.Entry
}

func (c Config) validate() error {
	if c.M < 1 {
		return errors.Errorf("fragdec: M must be >= 1, got %d", c.M)
	}
	if c.FragSize < 1 {
		return errors.Errorf("fragdec: FragSize must be >= 1, got %d", c.FragSize)
	}
	if c.T < 0 || c.T > c.M {
		return errors.Errorf("fragdec: T must be in [0, %d], got %d", c.M, c.T)
	}
	if c.Store == nil {
		return errors.New("fragdec: Store must not be nil")
	}
	return nil
}

func (c Config) logger() *logrus.Entry {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
