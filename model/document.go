package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ProvenanceItem ties a node to a source rectangle on a page. Charspan is
// the [start, end) byte range the rectangle contributed to the node's text.
type ProvenanceItem struct {
	PageNo   int    `json:"page_no"`
	BBox     BBox   `json:"bbox"`
	Charspan [2]int `json:"charspan"`
}

// Node is one content item of the document. Exactly one payload applies,
// selected by the label's kind: Text for text-like nodes and list items,
// Table for table nodes, Image for picture nodes. Captions and Footnotes are
// attachment nodes owned by this node; they never appear in the document's
// top-level sequence.
type Node struct {
	Label     Label            `json:"label"`
	Prov      []ProvenanceItem `json:"prov"`
	Text      string           `json:"text,omitempty"`
	Table     *TableData       `json:"data,omitempty"`
	Image     *ImageRef        `json:"image,omitempty"`
	Captions  []*Node          `json:"captions,omitempty"`
	Footnotes []*Node          `json:"footnotes,omitempty"`
}

// Kind returns the node kind derived from the label.
func (n *Node) Kind() NodeKind { return n.Label.Kind() }

// Document is the finished ground truth for one annotated image: the page
// registry plus the ordered node sequence.
type Document struct {
	Name  string            `json:"name"`
	Pages map[int]*PageItem `json:"pages"`
	Nodes []*Node           `json:"nodes"`
}

// NewDocument creates an empty document.
func NewDocument(name string) *Document {
	return &Document{
		Name:  name,
		Pages: make(map[int]*PageItem),
		Nodes: make([]*Node, 0),
	}
}

// AddPage registers a page, replacing any existing entry for its number.
func (d *Document) AddPage(page *PageItem) {
	d.Pages[page.PageNo] = page
}

// Page returns the registered page for a page number, or nil.
func (d *Document) Page(no int) *PageItem {
	return d.Pages[no]
}

// AddText appends a text node and returns it.
func (d *Document) AddText(label Label, prov ProvenanceItem, text string) *Node {
	node := &Node{Label: label, Prov: []ProvenanceItem{prov}, Text: text}
	d.Nodes = append(d.Nodes, node)
	return node
}

// AddListItem appends a list-item node and returns it.
func (d *Document) AddListItem(prov ProvenanceItem, text string) *Node {
	return d.AddText(LabelListItem, prov, text)
}

// AddTable appends a table node and returns it.
func (d *Document) AddTable(label Label, data TableData, prov ProvenanceItem) *Node {
	node := &Node{Label: label, Prov: []ProvenanceItem{prov}, Table: &data}
	d.Nodes = append(d.Nodes, node)
	return node
}

// AddPicture appends a picture node and returns it.
func (d *Document) AddPicture(prov ProvenanceItem, image *ImageRef) *Node {
	node := &Node{Label: LabelPicture, Prov: []ProvenanceItem{prov}, Image: image}
	d.Nodes = append(d.Nodes, node)
	return node
}

// Tables returns the table nodes of the document in sequence order.
func (d *Document) Tables() []*Node {
	var tables []*Node
	for _, n := range d.Nodes {
		if n.Kind() == KindTable {
			tables = append(tables, n)
		}
	}
	return tables
}

// Save writes the document as indented JSON.
func (d *Document) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("model: encode document %q: %w", d.Name, err)
	}
	return nil
}

// SaveFile writes the document as indented JSON to a file.
func (d *Document) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model: save document: %w", err)
	}
	defer f.Close()
	return d.Save(f)
}

// LoadDocument reads a document from its JSON form. The same format serves
// as output and as the reference input for table reconciliation.
func LoadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("model: decode document: %w", err)
	}
	if d.Pages == nil {
		d.Pages = make(map[int]*PageItem)
	}
	return &d, nil
}

// LoadDocumentFile reads a document JSON file.
func LoadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: load document: %w", err)
	}
	defer f.Close()
	return LoadDocument(f)
}
