package doclingeval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/DS4SD/docling-eval/annotation"
	"github.com/DS4SD/docling-eval/groundtruth"
	"github.com/DS4SD/docling-eval/model"
	"github.com/DS4SD/docling-eval/pages"
	"github.com/DS4SD/docling-eval/tables"
	"github.com/DS4SD/docling-eval/text"
)

// Warning describes a non-fatal condition encountered during a build. The
// build succeeded but the affected part of the output is degraded (empty
// text, missing table structure, missing crop).
type Warning struct {
	Image   string
	Message string
}

func (w Warning) String() string {
	if w.Image == "" {
		return w.Message
	}
	return w.Image + ": " + w.Message
}

// FormatWarnings renders a warning slice as a single human-readable string,
// one warning per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// GroundTruthBuilder provides a fluent interface for building one image's
// ground-truth document. Each configuration method returns a new instance,
// making chains safe to fork and reuse.
type GroundTruthBuilder struct {
	// Source
	rec annotation.ImageRecord

	// Collaborator inputs
	pgs    []*pages.Page
	parsed map[int]*text.ParsedPage
	ref    *model.Document
	ocr    groundtruth.RegionRecognizer

	// Configuration
	options BuildOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the builder with a deep copy of options.
// Each chain method returns a new instance.
func (b *GroundTruthBuilder) clone() *GroundTruthBuilder {
	newB := &GroundTruthBuilder{
		rec:     b.rec,
		pgs:     append([]*pages.Page(nil), b.pgs...),
		ref:     b.ref,
		ocr:     b.ocr,
		options: b.options.clone(),
		err:     b.err,
	}
	if b.parsed != nil {
		newB.parsed = make(map[int]*text.ParsedPage, len(b.parsed))
		for no, pp := range b.parsed {
			newB.parsed[no] = pp
		}
	}
	return newB
}

// ============================================================================
// Configuration Methods (return new GroundTruthBuilder instance)
// ============================================================================

// Page sets the page number the annotated image represents (1-indexed).
// Defaults to 1.
func (b *GroundTruthBuilder) Page(no int) *GroundTruthBuilder {
	newB := b.clone()
	if no < 1 {
		newB.err = fmt.Errorf("doclingeval: page number must be >= 1, got %d", no)
		return newB
	}
	newB.options.pageNo = no
	return newB
}

// WithPages supplies the rendered pages the annotation boxes address.
// Multiple calls are cumulative.
func (b *GroundTruthBuilder) WithPages(pgs ...*pages.Page) *GroundTruthBuilder {
	newB := b.clone()
	newB.pgs = append(newB.pgs, pgs...)
	return newB
}

// WithParsedPage supplies the programmatic text cells for one page. Without
// a parsed page, every box on that page resolves to empty text (or to the
// OCR fallback when one is configured).
func (b *GroundTruthBuilder) WithParsedPage(no int, pp *text.ParsedPage) *GroundTruthBuilder {
	newB := b.clone()
	if newB.parsed == nil {
		newB.parsed = make(map[int]*text.ParsedPage)
	}
	newB.parsed[no] = pp
	return newB
}

// WithReference supplies a reference document whose table cell structure is
// reconciled onto annotated table regions by bounding-box overlap.
func (b *GroundTruthBuilder) WithReference(ref *model.Document) *GroundTruthBuilder {
	newB := b.clone()
	newB.ref = ref
	return newB
}

// WithOCR supplies a recognizer used as a fallback for boxes whose text
// query comes back empty.
func (b *GroundTruthBuilder) WithOCR(r groundtruth.RegionRecognizer) *GroundTruthBuilder {
	newB := b.clone()
	newB.ocr = r
	return newB
}

// IoUCutoff overrides the table reconciliation threshold. Candidates whose
// overlap with every reference table is at or below the cutoff get the
// empty table sentinel.
func (b *GroundTruthBuilder) IoUCutoff(cutoff float64) *GroundTruthBuilder {
	newB := b.clone()
	if cutoff <= 0 || cutoff > 1 {
		newB.err = fmt.Errorf("doclingeval: IoU cutoff must be in (0, 1], got %v", cutoff)
		return newB
	}
	newB.options.iouCutoff = cutoff
	return newB
}

// ImageScale sets the scale factor for picture crops relative to the page
// render. Defaults to 1.0.
func (b *GroundTruthBuilder) ImageScale(scale float64) *GroundTruthBuilder {
	newB := b.clone()
	if scale <= 0 {
		newB.err = fmt.Errorf("doclingeval: image scale must be positive, got %v", scale)
		return newB
	}
	newB.options.imageScale = scale
	return newB
}

// TextOptions overrides the text assembly tolerances.
func (b *GroundTruthBuilder) TextOptions(opts text.Options) *GroundTruthBuilder {
	newB := b.clone()
	newB.options.textOptions = opts
	return newB
}

// Logger sets the logger for the build. Warnings logged during the build
// are also collected and returned from Build.
func (b *GroundTruthBuilder) Logger(logger *slog.Logger) *GroundTruthBuilder {
	newB := b.clone()
	newB.options.logger = logger
	return newB
}

// ============================================================================
// Terminal Operation
// ============================================================================

// Build parses the record, resolves its relations, and walks the reading
// order into a ground-truth document.
//
// Returns the document, any warnings encountered during processing, and an
// error if the build failed. Warnings indicate non-fatal degradation (empty
// text for a box, a table without reconciled cell structure, a missing
// picture crop) where the build succeeded but the output is imperfect.
func (b *GroundTruthBuilder) Build() (*model.Document, []Warning, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	if len(b.pgs) == 0 {
		return nil, nil, fmt.Errorf("doclingeval: no pages supplied for image %q", b.rec.Name)
	}

	base := b.options.logger
	if base == nil {
		base = slog.Default()
	}
	collector := newWarningCollector(base.Handler(), b.rec.Name)
	logger := slog.New(collector)

	parser := &annotation.Parser{Logger: logger}
	ann, err := parser.Parse(b.rec, b.options.pageNo)
	if err != nil {
		return nil, collector.warnings(), err
	}

	resolver := &annotation.Resolver{Logger: logger}
	rel, err := resolver.Resolve(ann)
	if err != nil {
		return nil, collector.warnings(), err
	}

	gb := groundtruth.NewBuilder(b.rec.Name, groundtruth.Config{
		Logger:     logger,
		Text:       b.textProvider(),
		Tables:     b.tableProvider(logger),
		OCR:        b.ocr,
		ImageScale: b.options.imageScale,
	})
	if err := gb.RegisterPages(b.pgs); err != nil {
		return nil, collector.warnings(), err
	}

	doc, err := gb.Build(ann, rel)
	if err != nil {
		return nil, collector.warnings(), err
	}
	return doc, collector.warnings(), nil
}

// textProvider binds the extractor to the supplied parsed pages. A nil
// return means no text source was configured at all.
func (b *GroundTruthBuilder) textProvider() groundtruth.TextProvider {
	if len(b.parsed) == 0 {
		return nil
	}
	return &parsedPageText{
		extractor: text.NewExtractorWithOptions(b.options.textOptions),
		parsed:    b.parsed,
	}
}

// tableProvider binds the matcher to the reference document, if one was
// supplied.
func (b *GroundTruthBuilder) tableProvider(logger *slog.Logger) groundtruth.TableProvider {
	if b.ref == nil {
		return nil
	}
	return &referenceTables{
		matcher: &tables.Matcher{Cutoff: b.options.iouCutoff, Logger: logger},
		ref:     b.ref,
	}
}

// parsedPageText adapts per-page cell lists to the builder's text query
// interface.
type parsedPageText struct {
	extractor *text.Extractor
	parsed    map[int]*text.ParsedPage
}

func (t *parsedPageText) BBoxText(pageNo int, rect model.BBox) (string, error) {
	pp, ok := t.parsed[pageNo]
	if !ok {
		return "", fmt.Errorf("no parsed cells for page %d", pageNo)
	}
	return t.extractor.BBoxText(pp, rect)
}

// referenceTables adapts the IoU matcher to the builder's table interface.
type referenceTables struct {
	matcher *tables.Matcher
	ref     *model.Document
}

func (t *referenceTables) FindTableData(cand model.ProvenanceItem) model.TableData {
	return t.matcher.FindTableData(t.ref, cand)
}

// warningCollector is a slog.Handler that forwards every record to an inner
// handler and additionally collects warn-level records as Warnings.
type warningCollector struct {
	inner slog.Handler
	image string

	mu   sync.Mutex
	list []Warning
}

func newWarningCollector(inner slog.Handler, image string) *warningCollector {
	return &warningCollector{inner: inner, image: image}
}

func (c *warningCollector) Enabled(ctx context.Context, level slog.Level) bool {
	// Warn records must always reach Handle, regardless of the inner
	// handler's level.
	return level >= slog.LevelWarn || c.inner.Enabled(ctx, level)
}

func (c *warningCollector) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= slog.LevelWarn {
		c.mu.Lock()
		c.list = append(c.list, Warning{Image: c.image, Message: rec.Message})
		c.mu.Unlock()
	}
	if c.inner.Enabled(ctx, rec.Level) {
		return c.inner.Handle(ctx, rec)
	}
	return nil
}

func (c *warningCollector) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedCollector{parent: c, inner: c.inner.WithAttrs(attrs)}
}

func (c *warningCollector) WithGroup(name string) slog.Handler {
	return &sharedCollector{parent: c, inner: c.inner.WithGroup(name)}
}

func (c *warningCollector) warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.list...)
}

// sharedCollector keeps derived handlers (With, WithGroup) feeding the same
// warning list as their root collector.
type sharedCollector struct {
	parent *warningCollector
	inner  slog.Handler
}

func (c *sharedCollector) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || c.inner.Enabled(ctx, level)
}

func (c *sharedCollector) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= slog.LevelWarn {
		c.parent.mu.Lock()
		c.parent.list = append(c.parent.list, Warning{Image: c.parent.image, Message: rec.Message})
		c.parent.mu.Unlock()
	}
	if c.inner.Enabled(ctx, rec.Level) {
		return c.inner.Handle(ctx, rec)
	}
	return nil
}

func (c *sharedCollector) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedCollector{parent: c.parent, inner: c.inner.WithAttrs(attrs)}
}

func (c *sharedCollector) WithGroup(name string) slog.Handler {
	return &sharedCollector{parent: c.parent, inner: c.inner.WithGroup(name)}
}
