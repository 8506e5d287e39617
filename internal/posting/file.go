package posting

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 25
	maxLineSize     = 4 * 1024 * 1024
)

// FileSource reads postings from a JSON-lines file, one object per line.
type FileSource struct {
	path     string
	pageSize int
	logger   *zap.Logger
}

func NewFileSource(path string, pageSize int, logger *zap.Logger) *FileSource {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, pageSize: pageSize, logger: logger}
}

// Run emits every valid line. Malformed lines and postings without an id are
// skipped and counted in the page metrics.
func (s *FileSource) Run(ctx context.Context, h Handlers) error {
	file, err := os.Open(s.path)
	if err != nil {
		return h.Fail(fmt.Errorf("open postings file: %w", err))
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		page    Metrics
		lineNum int
		inPage  int
	)
	page.Page = 1

	flush := func() {
		if inPage == 0 {
			return
		}
		h.Report(page)
		page = Metrics{Page: page.Page + 1}
		inPage = 0
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return h.Fail(err)
		}

		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		inPage++

		var p RawPosting
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			s.logger.Warn("skipping malformed posting", zap.Int("line", lineNum), zap.Error(err))
			page.Skipped++
		} else if p.ID = strings.TrimSpace(p.ID); p.ID == "" {
			s.logger.Warn("skipping posting without id", zap.Int("line", lineNum))
			page.Skipped++
		} else {
			h.Emit(p)
			page.Processed++
		}

		if inPage >= s.pageSize {
			flush()
		}
	}

	if err := scanner.Err(); err != nil {
		return h.Fail(fmt.Errorf("read postings file: %w", err))
	}

	flush()
	h.End()
	return nil
}
