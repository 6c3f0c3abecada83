package doclingeval

import (
	"log/slog"

	"github.com/DS4SD/docling-eval/tables"
	"github.com/DS4SD/docling-eval/text"
)

// BuildOptions holds configuration for a ground-truth build.
type BuildOptions struct {
	// Page number the annotated image represents (1-indexed).
	pageNo int

	// Table reconciliation
	iouCutoff float64

	// Picture crops are scaled by this factor relative to the page render.
	imageScale float64

	// Text assembly tolerances
	textOptions text.Options

	logger *slog.Logger
}

// defaultBuildOptions returns the default build options.
func defaultBuildOptions() BuildOptions {
	return BuildOptions{
		pageNo:      1,
		iouCutoff:   tables.DefaultIoUCutoff,
		imageScale:  1.0,
		textOptions: text.DefaultOptions(),
		logger:      nil, // nil means slog.Default()
	}
}

// clone creates a copy of BuildOptions.
func (o BuildOptions) clone() BuildOptions {
	return BuildOptions{
		pageNo:      o.pageNo,
		iouCutoff:   o.iouCutoff,
		imageScale:  o.imageScale,
		textOptions: o.textOptions,
		logger:      o.logger,
	}
}
