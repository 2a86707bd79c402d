package transcript

// Node is the part of an html tree the navigator and the extractor need, it
// keeps both of them independent of the parsing library.
type Node interface {
	// FindClass returns every descendant carrying the class, in document order.
	FindClass(class string) []Node
	// ChildrenClass returns the direct children carrying the class.
	ChildrenClass(class string) []Node
	// FindTag returns every descendant element with the tag name.
	FindTag(tag string) []Node
	// FindRel returns every descendant <tag> whose rel attribute contains rel.
	FindRel(tag, rel string) []Node
	// NextSibling returns the element immediately following this one.
	NextSibling() (Node, bool)

	ID() string
	Attr(name string) (string, bool)
	Text() string
	InnerHTML() (string, error)
}

// Document is the root of a parsed page.
type Document interface {
	Node
	Title() string
}

// Parser turns raw markup into a Document.
type Parser interface {
	Parse(markup string) (Document, error)
}

func first(nodes []Node) (Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}
