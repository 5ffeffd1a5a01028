//go:build !unix

package tl

import (
	"errors"
	"os"
)

func mapFile(*os.File, int) ([]byte, func() error, error) {
	return nil, nil, errors.New("tl: mmap unsupported")
}
