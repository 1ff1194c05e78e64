package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sink delivers a finished artifact to the user
type Sink interface {
	Deliver(ctx context.Context, a *Artifact) error
}

// DirSink writes artifacts into a directory under their own filename
type DirSink struct {
	Dir string
}

// Path returns where the artifact will be written
func (s DirSink) Path(a *Artifact) string {
	return filepath.Join(s.Dir, a.Filename)
}

// Deliver writes the artifact file, creating the directory if needed.
// Filenames that would leave the directory are rejected.
func (s DirSink) Deliver(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Filename == "" || strings.ContainsAny(a.Filename, `/\`) || a.Filename == "." || a.Filename == ".." {
		return fmt.Errorf("refusing to write %q outside %s", a.Filename, s.Dir)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(s.Path(a), a.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Filename, err)
	}
	return nil
}

// WriterSink streams the artifact bytes to W
type WriterSink struct {
	W io.Writer
}

// Deliver writes the artifact data
func (s WriterSink) Deliver(ctx context.Context, a *Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.W.Write(a.Data); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Filename, err)
	}
	return nil
}
