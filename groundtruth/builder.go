package groundtruth

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/DS4SD/docling-eval/annotation"
	"github.com/DS4SD/docling-eval/model"
	"github.com/DS4SD/docling-eval/pages"
)

var (
	// ErrUnknownBox marks a chain or reading-order reference to a box id
	// that is not in the image's box list. Fatal for the image's build.
	ErrUnknownBox = errors.New("groundtruth: reference to unknown box id")

	// ErrBadState marks a builder method called out of sequence.
	ErrBadState = errors.New("groundtruth: builder not in required state")
)

// State is the builder's lifecycle position.
type State int

const (
	StateNotStarted State = iota
	StatePagesRegistered
	StateWalking
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StatePagesRegistered:
		return "PAGES_REGISTERED"
	case StateWalking:
		return "WALKING_READING_ORDER"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "INVALID"
	}
}

// TextProvider answers rectangle text queries against the parsed source
// document. rect is in PDF points with a bottom-left origin. A failed query
// may return an error; the builder degrades it to empty text.
type TextProvider interface {
	BBoxText(pageNo int, rect model.BBox) (string, error)
}

// TableProvider reconciles an annotated table region against reference
// table structure. A miss returns the empty sentinel, never an error.
type TableProvider interface {
	FindTableData(cand model.ProvenanceItem) model.TableData
}

// RegionRecognizer recognizes text in a cropped page render. Optional; used
// as a fallback when the text provider yields nothing for a box.
type RegionRecognizer interface {
	RecognizeRegion(img image.Image) (string, error)
}

// Config wires a builder's collaborators.
type Config struct {
	Logger *slog.Logger
	Text   TextProvider
	Tables TableProvider
	OCR    RegionRecognizer

	// ImageScale rescales picture crops relative to the page render.
	// Zero means 1.0.
	ImageScale float64
}

// Builder assembles the ground-truth document for one image.
type Builder struct {
	name   string
	cfg    Config
	logger *slog.Logger

	state    State
	doc      *model.Document
	renders  map[int]image.Image
	consumed consumedSet
}

// NewBuilder creates a builder for one image. name becomes the document
// name.
func NewBuilder(name string, cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		name:     name,
		cfg:      cfg,
		logger:   logger.With("image", name),
		state:    StateNotStarted,
		doc:      model.NewDocument(name),
		renders:  make(map[int]image.Image),
		consumed: make(consumedSet),
	}
}

// State returns the builder's current lifecycle state.
func (b *Builder) State() State { return b.state }

// RegisterPages records every page's render and point-space size in the
// document's page registry. Must be called exactly once, before Build.
func (b *Builder) RegisterPages(pgs []*pages.Page) error {
	if b.state != StateNotStarted {
		return fmt.Errorf("%w: RegisterPages in %s", ErrBadState, b.state)
	}
	for _, p := range pgs {
		data, err := pages.EncodePNG(p.Image)
		if err != nil {
			b.state = StateFailed
			return fmt.Errorf("page %d: %w", p.Number, err)
		}
		b.doc.AddPage(&model.PageItem{
			PageNo: p.Number,
			Size:   p.PointSize,
			Image: &model.ImageRef{
				MimeType: "image/png",
				DPI:      p.DPI(),
				Size:     p.PixelSize,
				Data:     data,
			},
		})
		b.renders[p.Number] = p.Image
	}
	b.state = StatePagesRegistered
	return nil
}

// Build walks the reading order and materializes the document. On a fatal
// error (unknown box reference, unregistered page) the builder enters
// StateFailed and no document is published.
func (b *Builder) Build(ann *annotation.Annotation, rel *annotation.Relations) (*model.Document, error) {
	if b.state != StatePagesRegistered {
		return nil, fmt.Errorf("%w: Build in %s", ErrBadState, b.state)
	}
	b.state = StateWalking

	if b.cfg.Text == nil {
		b.logger.Warn("no text provider configured, boxes resolve to empty text")
	}

	for _, id := range rel.ReadingOrder {
		if b.consumed.has(id) {
			b.logger.Warn("box already materialized, skipping", "box", id)
			continue
		}
		if err := b.materialize(ann, rel, id); err != nil {
			b.state = StateFailed
			return nil, err
		}
	}

	b.state = StateDone
	return b.doc, nil
}

// materialize creates the node for one reading-order box, including its
// merge chain and any caption/footnote attachments.
func (b *Builder) materialize(ann *annotation.Annotation, rel *annotation.Relations, id int) error {
	box, err := b.boxFor(ann, id)
	if err != nil {
		return err
	}

	kind := box.Label.Kind()
	switch kind {
	case model.KindCaption:
		// Captions only ever materialize as attachments to an owning
		// table or picture, never as standalone nodes. Leaving the box
		// unconsumed keeps it available for a later to_caption chain.
		b.logger.Debug("caption box in reading order, deferring to attachment", "box", id)
		return nil
	case model.KindUnknown:
		b.logger.Warn("skipping box with unrecognized label", "box", id, "label", string(box.Label))
		return nil
	}

	prov, text, err := b.resolveBox(box)
	if err != nil {
		return err
	}
	b.consumed.add(id)

	provs := []model.ProvenanceItem{prov}
	for _, dep := range rel.Merges.Dependents(id) {
		if b.consumed.has(dep) {
			b.logger.Warn("merge dependent already materialized, skipping", "box", dep)
			continue
		}
		depBox, err := b.boxFor(ann, dep)
		if err != nil {
			return err
		}
		depProv, depText, err := b.resolveBox(depBox)
		if err != nil {
			return err
		}
		b.consumed.add(dep)
		if depText != "" {
			start := len(text) + 1
			depProv.Charspan = [2]int{start, start + len(depText)}
			text = text + " " + depText
		} else {
			depProv.Charspan = [2]int{len(text), len(text)}
		}
		provs = append(provs, depProv)
	}

	switch kind {
	case model.KindText:
		node := b.doc.AddText(box.Label, provs[0], text)
		node.Prov = append(node.Prov, provs[1:]...)

	case model.KindListItem:
		node := b.doc.AddListItem(provs[0], text)
		node.Prov = append(node.Prov, provs[1:]...)

	case model.KindTable:
		data := model.TableData{}
		if b.cfg.Tables != nil {
			data = b.cfg.Tables.FindTableData(provs[0])
		} else {
			b.logger.Warn("no table provider configured, table has no cell structure", "box", id)
		}
		node := b.doc.AddTable(box.Label, data, provs[0])
		node.Prov = append(node.Prov, provs[1:]...)
		if err := b.attach(ann, rel.Captions, id, model.LabelCaption, &node.Captions); err != nil {
			return err
		}
		if err := b.attach(ann, rel.Footnotes, id, model.LabelFootnote, &node.Footnotes); err != nil {
			return err
		}

	case model.KindPicture:
		node := b.doc.AddPicture(provs[0], b.cropImage(box))
		node.Prov = append(node.Prov, provs[1:]...)
		if err := b.attach(ann, rel.Captions, id, model.LabelCaption, &node.Captions); err != nil {
			return err
		}
		if err := b.attach(ann, rel.Footnotes, id, model.LabelFootnote, &node.Footnotes); err != nil {
			return err
		}
	}

	return nil
}

// attach materializes a caption or footnote chain anchored at a table or
// picture box, appending one attachment node per dependent box.
func (b *Builder) attach(ann *annotation.Annotation, chains annotation.ChainMap, anchor int, label model.Label, dst *[]*model.Node) error {
	for _, dep := range chains.Dependents(anchor) {
		if b.consumed.has(dep) {
			b.logger.Warn("attachment box already materialized, skipping", "box", dep)
			continue
		}
		depBox, err := b.boxFor(ann, dep)
		if err != nil {
			return err
		}
		prov, text, err := b.resolveBox(depBox)
		if err != nil {
			return err
		}
		if depBox.Label != label {
			b.logger.Warn("attached box label does not match relation",
				"box", dep, "label", string(depBox.Label), "expected", string(label))
		}
		*dst = append(*dst, &model.Node{
			Label: label,
			Prov:  []model.ProvenanceItem{prov},
			Text:  text,
		})
		b.consumed.add(dep)
	}
	return nil
}

// resolveBox converts a box's pixel rectangle to PDF point space and
// queries the text provider for its content. Extraction failures degrade to
// empty text; only structural problems (unregistered page, degenerate
// sizes) are errors.
func (b *Builder) resolveBox(box *annotation.Box) (model.ProvenanceItem, string, error) {
	page := b.doc.Page(box.Page)
	if page == nil {
		return model.ProvenanceItem{}, "", fmt.Errorf("groundtruth: box %d references unregistered page %d", box.ID, box.Page)
	}

	pdfRect, err := box.Rect.ScaleToSize(page.ImageSize(), page.Size)
	if err != nil {
		return model.ProvenanceItem{}, "", fmt.Errorf("box %d: %w", box.ID, err)
	}

	var textContent string
	if b.cfg.Text != nil {
		query := pdfRect.ToBottomLeft(page.Size.Height)
		textContent, err = b.cfg.Text.BBoxText(box.Page, query)
		if err != nil {
			b.logger.Warn("text extraction failed, using empty text",
				"box", box.ID, "page", box.Page, "error", err)
			textContent = ""
		}
	}

	if textContent == "" && b.cfg.OCR != nil {
		textContent = b.recognize(box)
	}

	return model.ProvenanceItem{
		PageNo:   box.Page,
		BBox:     pdfRect,
		Charspan: [2]int{0, len(textContent)},
	}, textContent, nil
}

// recognize runs the OCR fallback over the box's region of the page render.
// Any failure degrades to empty text.
func (b *Builder) recognize(box *annotation.Box) string {
	render, ok := b.renders[box.Page]
	if !ok {
		return ""
	}
	crop, err := pages.Crop(render, box.Rect, 1.0)
	if err != nil {
		b.logger.Warn("ocr crop failed", "box", box.ID, "error", err)
		return ""
	}
	recognized, err := b.cfg.OCR.RecognizeRegion(crop)
	if err != nil {
		b.logger.Warn("ocr fallback failed", "box", box.ID, "error", err)
		return ""
	}
	return recognized
}

// cropImage cuts the picture payload out of the page render. A failed crop
// degrades to a node without an image payload.
func (b *Builder) cropImage(box *annotation.Box) *model.ImageRef {
	render, ok := b.renders[box.Page]
	if !ok {
		b.logger.Warn("no render for picture page", "box", box.ID, "page", box.Page)
		return nil
	}
	crop, err := pages.Crop(render, box.Rect, b.imageScale())
	if err != nil {
		b.logger.Warn("picture crop failed", "box", box.ID, "error", err)
		return nil
	}
	data, err := pages.EncodePNG(crop)
	if err != nil {
		b.logger.Warn("picture encode failed", "box", box.ID, "error", err)
		return nil
	}
	page := b.doc.Page(box.Page)
	dpi := 0
	if page != nil && page.Image != nil {
		dpi = page.Image.DPI
	}
	return &model.ImageRef{
		MimeType: "image/png",
		DPI:      dpi,
		Size: model.Size{
			Width:  float64(crop.Bounds().Dx()),
			Height: float64(crop.Bounds().Dy()),
		},
		Data: data,
	}
}

func (b *Builder) boxFor(ann *annotation.Annotation, id int) (*annotation.Box, error) {
	box := ann.Box(id)
	if box == nil {
		return nil, fmt.Errorf("%w: %d (image %q has %d boxes)", ErrUnknownBox, id, ann.Name, len(ann.Boxes))
	}
	return box, nil
}

func (b *Builder) imageScale() float64 {
	if b.cfg.ImageScale > 0 {
		return b.cfg.ImageScale
	}
	return 1.0
}
