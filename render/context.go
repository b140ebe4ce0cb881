package render

import "github.com/hayeah/tessera/content"

// Context holds the current context page of a render.
type Context struct {
	page *content.Page
}

// NewContext starts with page as the context.
func NewContext(page *content.Page) *Context {
	return &Context{page: page}
}

// Get returns the context page. It may be nil.
func (c *Context) Get() *content.Page {
	return c.page
}

// Set replaces the context page.
func (c *Context) Set(page *content.Page) {
	c.page = page
}

// Push makes page the context and returns a function restoring the previous
// one. Callers defer the restore.
func (c *Context) Push(page *content.Page) (restore func()) {
	prev := c.page
	c.page = page
	return func() { c.page = prev }
}
