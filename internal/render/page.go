package render

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// PageRequest describes one page to write.
type PageRequest struct {
	// Relative, slash-separated path of the page below DeployDir.
	Path      string
	Content   Renderable
	Site      string
	DeployDir string
	Minify    bool
}

// Page renders req.Content and writes it to req.DeployDir/req.Path.
//
// Absolute paths and paths escaping the deployment directory are rejected before any
// file is touched. The written text is trimmed and ends with exactly one newline, so
// rendering the same content twice yields identical files.
func Page(ctx context.Context, logger *slog.Logger, req PageRequest) error {
	return PageWith(ctx, logger, defaultMinifier(), req)
}

// PageWith is Page with an explicit minifier.
func PageWith(ctx context.Context, logger *slog.Logger, mf *Minifier, req PageRequest) error {
	logger = logging.OrDiscard(logger).With(logfields.Site(req.Site), logfields.Page(req.Path))

	target, err := pageTarget(req)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "page rendering cancelled").
			WithContext("page", req.Path).Build()
	}
	if req.Content == nil {
		return errors.RenderError("page has no content").WithContext("page", req.Path).Build()
	}

	logger.Debug("Rendering page")
	text, err := req.Content.Render()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to render page").
			WithContext("page", req.Path).Build()
	}

	if req.Minify {
		if mf == nil {
			mf = defaultMinifier()
		}
		text, err = mf.Minify(logger, text)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRender, "failed to minify page").
				WithContext("page", req.Path).Build()
		}
	}

	text = strings.TrimSpace(text) + "\n"

	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create page directory").
			WithContext("path", filepath.Dir(target)).Build()
	}
	if err := os.WriteFile(target, []byte(text), fileMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write page").
			WithContext("path", target).Build()
	}

	logger.Debug("Page written", logfields.Path(target))
	return nil
}

func pageTarget(req PageRequest) (string, error) {
	if path.IsAbs(req.Path) || filepath.IsAbs(req.Path) {
		return "", errors.ValidationError("page path must be relative").
			WithContext("page", req.Path).Build()
	}
	local := filepath.FromSlash(req.Path)
	if !filepath.IsLocal(local) {
		return "", errors.ValidationError("page path must stay inside the deployment directory").
			WithContext("page", req.Path).Build()
	}
	if req.DeployDir == "" {
		return "", errors.ValidationError("deployment directory is required").Build()
	}
	return filepath.Join(req.DeployDir, local), nil
}
