package filtering

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
)

type excludeFileFilter struct {
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes postings listed in an exclude
// file. A missing file excludes nothing.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{path: strings.TrimSpace(path), logger: logger}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) IsEnabled() bool { return f.path != "" }

func (f *excludeFileFilter) Apply(_ context.Context, postings []posting.RawPosting) ([]posting.RawPosting, Step, error) {
	initial := len(postings)

	ids, err := ReadExcludeFile(f.path)
	if err != nil {
		return postings, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	kept, dropped := exclude(postings, func(p posting.RawPosting) bool {
		_, ok := ids[strings.TrimSpace(p.ID)]
		return ok
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

// ReadExcludeFile reads one posting id per line. Blank lines and lines
// starting with # are ignored.
func ReadExcludeFile(path string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ids, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids[line] = struct{}{}
	}

	return ids, scanner.Err()
}

// AppendToExcludeFile adds the ids of postings to the exclude file, creating it if needed.
func AppendToExcludeFile(path string, postings []posting.RawPosting) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, p := range postings {
		if id := strings.TrimSpace(p.ID); id != "" {
			fmt.Fprintln(w, id)
		}
	}
	return w.Flush()
}
