package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("history log is closed")

// FileLog appends run records to a file. It is safe for concurrent use.
type FileLog struct {
	// path is the log location.
	path string
	// file is the append handle.
	file *os.File
	// encoder writes CBOR items to file.
	encoder *cbor.Encoder
	// mu guards file, encoder and closed.
	mu sync.Mutex
	// closed is set by Close.
	closed bool
}

// OpenFileLog opens path for appending, creating it if needed.
func OpenFileLog(path string) (*FileLog, error) {
	path = filepath.Clean(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}

	return &FileLog{
		path:    path,
		file:    f,
		encoder: encMode.NewEncoder(f),
	}, nil
}

// Path returns the log location.
func (l *FileLog) Path() string {
	return l.path
}

// Append writes rec to the end of the log.
func (l *FileLog) Append(_ context.Context, rec starter.RunRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	if err := l.encoder.Encode(toEntry(rec)); err != nil {
		return fmt.Errorf("append run %s: %w", rec.ID, err)
	}

	return nil
}

// List returns the last limit records, oldest first. A limit of zero or less
// returns every record.
func (l *FileLog) List(ctx context.Context, limit int) ([]starter.RunRecord, error) {
	return Read(ctx, l.path, limit)
}

// Close closes the log. It is safe to call more than once.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true

	return l.file.Close()
}

// Read decodes the log at path and returns the last limit records, oldest
// first. A missing file is an empty log. A truncated last record, left by a
// crash mid-write, is skipped with a warning.
func Read(ctx context.Context, path string, limit int) ([]starter.RunRecord, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only handle.

	var (
		records []starter.RunRecord
		decoder = decMode.NewDecoder(f)
	)

	for {
		var e entry

		err = decoder.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				logger.WarnKV(ctx, "History log ends with a partial record", "path", path)

				break
			}

			return nil, fmt.Errorf("decode history log: %w", err)
		}

		rec, err := fromEntry(e)
		if err != nil {
			logger.WarnKV(ctx, "Skipping unreadable history record", "path", path, "error", err)

			continue
		}

		records = append(records, rec)
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	return records, nil
}
