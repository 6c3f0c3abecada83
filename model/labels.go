package model

// Label is the content label attached to an annotated box. The set mirrors
// the labels the annotation tool exposes; anything outside it maps to
// KindUnknown during dispatch.
type Label string

const (
	LabelText               Label = "text"
	LabelParagraph          Label = "paragraph"
	LabelReference          Label = "reference"
	LabelPageHeader         Label = "page_header"
	LabelPageFooter         Label = "page_footer"
	LabelTitle              Label = "title"
	LabelFootnote           Label = "footnote"
	LabelSectionHeader      Label = "section_header"
	LabelCaption            Label = "caption"
	LabelCheckboxSelected   Label = "checkbox_selected"
	LabelCheckboxUnselected Label = "checkbox_unselected"
	LabelListItem           Label = "list_item"
	LabelFormula            Label = "formula"
	LabelCode               Label = "code"
	LabelForm               Label = "form"
	LabelKeyValueRegion     Label = "key_value_region"
	LabelTable              Label = "table"
	LabelDocumentIndex      Label = "document_index"
	LabelPicture            Label = "picture"
)

// NodeKind is the closed set of node shapes a label can materialize into.
// Keeping the mapping in one table makes the unknown-label gap a named case
// instead of a silent fallthrough in a long switch.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindText
	KindListItem
	KindCaption
	KindTable
	KindPicture
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindListItem:
		return "ListItem"
	case KindCaption:
		return "Caption"
	case KindTable:
		return "Table"
	case KindPicture:
		return "Picture"
	default:
		return "Unknown"
	}
}

var labelKinds = map[Label]NodeKind{
	LabelText:               KindText,
	LabelParagraph:          KindText,
	LabelReference:          KindText,
	LabelPageHeader:         KindText,
	LabelPageFooter:         KindText,
	LabelTitle:              KindText,
	LabelFootnote:           KindText,
	LabelSectionHeader:      KindText,
	LabelCheckboxSelected:   KindText,
	LabelCheckboxUnselected: KindText,
	LabelFormula:            KindText,
	LabelCode:               KindText,
	LabelForm:               KindText,
	LabelKeyValueRegion:     KindText,
	LabelListItem:           KindListItem,
	LabelCaption:            KindCaption,
	LabelTable:              KindTable,
	LabelDocumentIndex:      KindTable,
	LabelPicture:            KindPicture,
}

// Kind returns the node kind a label dispatches to. Labels outside the
// closed set return KindUnknown.
func (l Label) Kind() NodeKind {
	return labelKinds[l]
}
