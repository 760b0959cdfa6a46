package source

import (
	"context"
	"fmt"
	"log/slog"

	"agriprep/internal/dataset"
	apperrors "agriprep/internal/errors"
)

// FileSource discovers the newest matching data file under a directory and
// reads it.
type FileSource struct {
	dir      string
	patterns []string
	logger   *slog.Logger
}

// NewFileSource creates a local-file provider.
func NewFileSource(logger *slog.Logger, dir string, patterns []string) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	if len(patterns) == 0 {
		patterns = []string{"*.csv", "*.xlsx"}
	}
	return &FileSource{
		dir:      dir,
		patterns: patterns,
		logger:   logger.With(slog.String("component", "source.file")),
	}
}

// Name implements Provider.
func (s *FileSource) Name() string { return "file:" + s.dir }

// Fetch reads the newest matching file in the data directory.
func (s *FileSource) Fetch(ctx context.Context) (*dataset.Table, error) {
	files, err := dataset.Discover(s.dir, s.patterns)
	if err != nil {
		return nil, apperrors.NewStorageError("discover data files", err)
	}
	if len(files) == 0 {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("data file matching %v under %s", s.patterns, s.dir))
	}

	newest := files[0]
	s.logger.InfoContext(ctx, "reading local data file",
		slog.String("path", newest.Path),
		slog.Int64("size_bytes", newest.Size))

	table, err := dataset.ReadFile(newest.Path)
	if err != nil {
		return nil, err
	}
	if missing := dataset.MissingRequired(table); len(missing) > 0 {
		s.logger.WarnContext(ctx, "data file lacks required columns",
			slog.String("path", newest.Path),
			slog.Any("missing", missing))
	}
	return table, nil
}
