package sync

import (
	"context"
	"log/slog"

	"github.com/amanverma-wsu/cicd-tool/internal/diff"
	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/fsys"
)

// LocalTarget writes the rendered document to a path on a filesystem. The
// previous content, if any, is fully replaced.
type LocalTarget struct {
	// FS is the filesystem to write through.
	FS *fsys.FS

	// Path is the destination path of the workflow document.
	Path string
}

// apply writes the rendered text atomically: the document lands in a
// temporary file first and is renamed into place, so a failed write never
// leaves a partial file at Path.
func (t LocalTarget) apply(_ context.Context, log *slog.Logger, res diff.Result) (Outcome, error) {
	if err := t.FS.WriteFileAtomic(t.Path, []byte(res.New), 0o644); err != nil {
		return Outcome{}, errors.WrapWithContext(
			err,
			errors.CodePersistFailed,
			"failed to write workflow document",
			map[string]interface{}{"path": t.Path},
		)
	}

	log.Info("workflow document written", "path", t.Path, "action", res.Kind.String())
	return Outcome{Kind: WrittenLocally, Path: t.Path}, nil
}
