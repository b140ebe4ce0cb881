package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) ([]Node, []*Error) {
	t.Helper()
	tree, errs := Parse(src, DefaultDelimiters())
	require.NotNil(t, tree)
	return tree.Nodes, errs
}

func texts(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if tn, ok := n.(*TextNode); ok {
			b.WriteString(tn.Text)
		}
	}
	return b.String()
}

func TestParseNestedIf(t *testing.T) {
	assert := assert.New(t)

	nodes, errs := parse(t, `<@ if @{ a } @>A<@ if @{ b } @>B<@ else @>NB<@ end @>A2<@ else @>NA<@ end @>`)
	assert.Empty(errs)
	require.Len(t, nodes, 1)

	outer, ok := nodes[0].(*IfNode)
	require.True(t, ok)
	assert.Equal("AA2", texts(outer.Body))
	assert.Equal("NA", texts(outer.Else))

	require.Len(t, outer.Body, 3)
	inner, ok := outer.Body[1].(*IfNode)
	require.True(t, ok)
	assert.Equal("B", texts(inner.Body))
	assert.Equal("NB", texts(inner.Else))
}

func TestParseNestedForeach(t *testing.T) {
	assert := assert.New(t)

	src := `<@ foreach in pagelist @>P<@ foreach "*.jpg" { width: 10 } @>F<@ else @>none<@ end @><@ else @>empty<@ end @>`
	nodes, errs := parse(t, src)
	assert.Empty(errs)
	require.Len(t, nodes, 1)

	outer := nodes[0].(*ForeachNode)
	assert.True(outer.Target.IsWord("pagelist"))
	assert.Equal("", outer.Options)
	assert.Equal("empty", texts(outer.Else))
	require.Len(t, outer.Body, 2)

	inner := outer.Body[1].(*ForeachNode)
	assert.Equal(Operand{Kind: OperandString, Text: "*.jpg"}, inner.Target)
	assert.Equal("{ width: 10 }", inner.Options)
	assert.Equal("F", texts(inner.Body))
	assert.Equal("none", texts(inner.Else))
}

func TestParseStatements(t *testing.T) {
	assert := assert.New(t)

	nodes, errs := parse(t, `<@ elements/header.php @><@ pagelist { type: "children", limit: @{ n } } @><@ my-snippet @>`+
		`<@ snippet my-snippet @>S<@ end @><@ for 1 to @{ n } @>i<@ end @><@ with prev @>p<@ end @>`)
	assert.Empty(errs)
	require.Len(t, nodes, 6)

	assert.Equal("elements/header.php", nodes[0].(*IncludeNode).Path)

	call := nodes[1].(*CallNode)
	assert.Equal("pagelist", call.Name)
	assert.Equal(`{ type: "children", limit: @{ n } }`, call.Options)

	assert.Equal(&CallNode{Position: nodes[2].Pos(), Name: "my-snippet"}, nodes[2])

	snip := nodes[3].(*SnippetNode)
	assert.Equal("my-snippet", snip.Name)
	assert.Equal("S", texts(snip.Body))

	loop := nodes[4].(*ForNode)
	assert.Equal(Operand{Kind: OperandNumber, Text: "1"}, loop.Start)
	assert.Equal(Operand{Kind: OperandVar, Text: "@{ n }"}, loop.End)

	with := nodes[5].(*WithNode)
	assert.True(with.Target.IsWord("prev"))
}

func TestParseKeywordsCaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	nodes, errs := parse(t, `<@ IF @{ a } @>x<@ ELSE @>y<@ End @>`)
	assert.Empty(errs)
	require.Len(t, nodes, 1)
	n := nodes[0].(*IfNode)
	assert.Equal("x", texts(n.Body))
	assert.Equal("y", texts(n.Else))
}

func TestParseRecovery(t *testing.T) {
	t.Run("stray end and else are dropped", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `a<@ end @>b<@ else @>c`)
		assert.Len(errs, 2)
		assert.Equal("abc", texts(nodes))
		assert.Len(nodes, 3)
	})

	t.Run("unclosed block closes at end of input", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `<@ if @{ a } @>open`)
		require.Len(t, errs, 1)
		assert.Contains(errs[0].Error(), "unclosed if")
		assert.Equal("1:1: unclosed if, closed at end of input", errs[0].Error())
		require.Len(t, nodes, 1)
		assert.Equal("open", texts(nodes[0].(*IfNode).Body))
	})

	t.Run("else inside for is dropped", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `<@ for 1 to 2 @>body<@ else @>dropped<@ end @>after`)
		require.Len(t, errs, 1)
		assert.Contains(errs[0].Msg, "else is not allowed in for")
		require.Len(t, nodes, 2)
		assert.Equal("body", texts(nodes[0].(*ForNode).Body))
		assert.Equal("after", texts(nodes[1:]))
	})

	t.Run("else inside snippet is dropped", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `<@ snippet s @>body<@ else @>dropped<@ end @>`)
		require.Len(t, errs, 1)
		assert.Equal("body", texts(nodes[0].(*SnippetNode).Body))
	})

	t.Run("unknown statement stays as text", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `x<@ 1 + 2 @>y`)
		require.Len(t, errs, 1)
		assert.Equal("x<@ 1 + 2 @>y", texts(nodes))
	})

	t.Run("malformed for consumes its block", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `<@ for 1 until 3 @>x<@ end @>after`)
		require.Len(t, errs, 1)
		assert.Contains(errs[0].Msg, "malformed for")
		assert.Equal("after", texts(nodes))
	})

	t.Run("bad condition evaluates as empty", func(t *testing.T) {
		assert := assert.New(t)
		nodes, errs := parse(t, `<@ if @{ a } = @>x<@ else @>y<@ end @>`)
		require.Len(t, errs, 1)
		n := nodes[0].(*IfNode)
		assert.Empty(n.Cond.Parts)
		assert.Equal("y", texts(n.Else))
	})

	t.Run("nesting limit", func(t *testing.T) {
		assert := assert.New(t)
		src := strings.Repeat(`<@ if @{ a } @>`, MaxNesting+1) + "x<@ else @>y" + strings.Repeat(`<@ end @>`, MaxNesting+1) + "after"
		nodes, errs := parse(t, src)
		require.Len(t, errs, 1)
		assert.Contains(errs[0].Msg, "nested deeper than 100, block dropped")

		// the dropped block takes its own end, so every enclosing if
		// keeps its pair and the trailing text stays at the top level
		require.Len(t, nodes, 2)
		assert.Equal("after", texts(nodes[1:]))
		n := nodes[0].(*IfNode)
		for i := 1; i < MaxNesting; i++ {
			require.Len(t, n.Body, 1)
			n = n.Body[0].(*IfNode)
		}
		assert.Empty(n.Body)
		assert.Empty(n.Else)
	})
}

func TestParseCondition(t *testing.T) {
	d := DefaultDelimiters()

	t.Run("comparison chain", func(t *testing.T) {
		assert := assert.New(t)
		cond, err := ParseCondition(`"a" = "a" and @{ x } != 'c' OR 10 >= @{ n }`, d)
		require.NoError(t, err)
		require.Len(t, cond.Parts, 3)

		assert.Equal(OpNone, cond.Parts[0].Op)
		assert.Equal(&Comparison{
			Left:     Operand{Kind: OperandString, Text: "a"},
			Operator: "=",
			Right:    Operand{Kind: OperandString, Text: "a"},
		}, cond.Parts[0].Comparison)

		assert.Equal(OpAnd, cond.Parts[1].Op)
		assert.Equal("!=", cond.Parts[1].Comparison.Operator)
		assert.Equal(Operand{Kind: OperandVar, Text: "@{ x }"}, cond.Parts[1].Comparison.Left)

		assert.Equal(OpOr, cond.Parts[2].Op)
		assert.Equal(">=", cond.Parts[2].Comparison.Operator)
		assert.Equal(Operand{Kind: OperandNumber, Text: "10"}, cond.Parts[2].Comparison.Left)
	})

	t.Run("booleans", func(t *testing.T) {
		assert := assert.New(t)
		cond, err := ParseCondition(`not @{ hidden } and !@{ draft } or @{ title }`, d)
		require.NoError(t, err)
		require.Len(t, cond.Parts, 3)
		assert.Equal(&Boolean{Not: true, Operand: Operand{Kind: OperandVar, Text: "@{ hidden }"}}, cond.Parts[0].Boolean)
		assert.Equal(&Boolean{Not: true, Operand: Operand{Kind: OperandVar, Text: "@{ draft }"}}, cond.Parts[1].Boolean)
		assert.Equal(&Boolean{Operand: Operand{Kind: OperandVar, Text: "@{ title }"}}, cond.Parts[2].Boolean)
	})

	t.Run("escaped quotes", func(t *testing.T) {
		assert := assert.New(t)
		cond, err := ParseCondition(`@{ q } = "say \"hi\""`, d)
		require.NoError(t, err)
		assert.Equal(`say "hi"`, cond.Parts[0].Comparison.Right.Text)
	})

	t.Run("errors", func(t *testing.T) {
		assert := assert.New(t)
		_, err := ParseCondition(`@{ a } @{ b }`, d)
		assert.Error(err)
		_, err = ParseCondition(`@{ a } <`, d)
		assert.Error(err)
		_, err = ParseCondition(``, d)
		assert.Error(err)
	})
}

func TestCache(t *testing.T) {
	assert := assert.New(t)

	c := NewCache(DefaultDelimiters(), 2)
	a1, _ := c.Parse("a")
	a2, _ := c.Parse("a")
	assert.Same(a1, a2)

	c.Parse("b")
	c.Parse("c")
	assert.Equal(2, c.Len())

	a3, _ := c.Parse("a")
	assert.NotSame(a1, a3)
}
