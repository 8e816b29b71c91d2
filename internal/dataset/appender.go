package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
)

// Appender adds validated readings to the end of the dataset file. Appended
// rows are not seen by models trained before the append.
type Appender struct {
	path string
	mu   sync.Mutex
}

// NewAppender creates an Appender for the CSV at path. The file is created
// with a header on first append if it does not exist.
func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

// Path returns the dataset file location.
func (a *Appender) Path() string { return a.path }

// Append validates m and writes it as one CSV line.
func (a *Appender) Append(m domain.Measurement) (err error) {
	if err := domain.ValidateMeasurement(m); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset for append: %w", err)
	}
	defer closeInto(f, &err)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dataset: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	} else if missing, err := missingTrailingNewline(f, info.Size()); err != nil {
		return err
	} else if missing {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("terminate last row: %w", err)
		}
	}

	if err := w.Write(FormatRecord(m)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// closeInto closes c and reports its error through err unless err already
// holds an earlier failure.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close dataset: %w", cerr)
	}
}

func missingTrailingNewline(f *os.File, size int64) (bool, error) {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read dataset tail: %w", err)
	}
	return last[0] != '\n', nil
}
