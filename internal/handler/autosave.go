package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/Guilherme32/rosa-go/internal/errors"
	"github.com/Guilherme32/rosa-go/internal/spectrum"
)

// maxAutoSaveIndex bounds the auto-save numbering space: spectrum000.txt
// through spectrum99999.txt.
const maxAutoSaveIndex = 100_000

// autoSaveSpectrum creates folder if needed and saves s under the
// smallest unused spectrumNNNNN.txt index in it.
func autoSaveSpectrum(s spectrum.Spectrum, folder string) (int, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return 0, apperrors.FileError(err, folder, 0)
	}

	for i := range maxAutoSaveIndex {
		path := filepath.Join(folder, fmt.Sprintf("spectrum%03d.txt", i))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			start := time.Now()
			if err := s.Save(path); err != nil {
				return 0, apperrors.New(err).
					Category(apperrors.CategoryFileIO).
					FileContext(path, 0).
					Timing("auto_save", time.Since(start)).
					Build()
			}
			return i, nil
		}
	}

	return 0, apperrors.New(apperrors.NewStd("auto-save folder full, all spectrum000-99999 slots taken")).
		Category(apperrors.CategoryLimit).
		Component("handler").
		Build()
}
