package syntax

// Node is an element of a parsed template.
type Node interface {
	Pos() Position
	node()
}

// TextNode is static text, written out unchanged.
type TextNode struct {
	Position
	Text string
}

// VarNode is a variable reference.
type VarNode struct {
	Position
	Raw  string
	Expr VarExpr
}

// IncludeNode includes another template file.
type IncludeNode struct {
	Position
	Path string
}

// CallNode invokes a snippet, toolbox method or extension. Options holds
// the raw option object including braces, or "" when absent.
type CallNode struct {
	Position
	Name    string
	Options string
}

// SnippetNode defines a named snippet.
type SnippetNode struct {
	Position
	Name string
	Body []Node
}

// WithNode switches the context to a page or binds a file.
type WithNode struct {
	Position
	Target  Operand
	Options string
	Body    []Node
	Else    []Node
}

// ForNode is a counted loop over an inclusive integer range.
type ForNode struct {
	Position
	Start Operand
	End   Operand
	Body  []Node
}

// ForeachNode loops over pages, filters, tags or files.
type ForeachNode struct {
	Position
	Target  Operand
	Options string
	Body    []Node
	Else    []Node
}

// IfNode is a conditional. Source keeps the unparsed expression for logging.
type IfNode struct {
	Position
	Source string
	Cond   Condition
	Body   []Node
	Else   []Node
}

func (*TextNode) node()    {}
func (*VarNode) node()     {}
func (*IncludeNode) node() {}
func (*CallNode) node()    {}
func (*SnippetNode) node() {}
func (*WithNode) node()    {}
func (*ForNode) node()     {}
func (*ForeachNode) node() {}
func (*IfNode) node()      {}

// Tree is a parsed template.
type Tree struct {
	Source string
	Nodes  []Node
}

// Walk calls fn for every node in depth-first source order, including the
// bodies of block nodes. Returning false from fn skips the node's children.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch n := n.(type) {
		case *SnippetNode:
			Walk(n.Body, fn)
		case *WithNode:
			Walk(n.Body, fn)
			Walk(n.Else, fn)
		case *ForNode:
			Walk(n.Body, fn)
		case *ForeachNode:
			Walk(n.Body, fn)
			Walk(n.Else, fn)
		case *IfNode:
			Walk(n.Body, fn)
			Walk(n.Else, fn)
		}
	}
}
