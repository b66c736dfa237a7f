// Package fs anchors name normalization to the process working directory.
package fs

import (
	"os"

	"go.trai.ch/zerr"

	"github.com/remake-build/remake/internal/core/domain"
)

// NewNormalizer returns a normalizer rooted at the current working
// directory. The working directory is captured once; the process must not
// change it afterwards.
func NewNormalizer() (*domain.Normalizer, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}
	return domain.NewNormalizer(wd), nil
}
