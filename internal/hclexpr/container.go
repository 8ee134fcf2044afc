package hclexpr

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container gathers expressions and caches their analysis.
type Container struct {
	once sync.Once
	mu   sync.Mutex

	expressions []hcl.Expression
	references  []hcl.Traversal
	functions   []string
}

// NewContainer creates a container holding exprs. Nil expressions are ignored.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add appends expressions and invalidates any cached analysis. It must not
// be called concurrently with the getters.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.once = sync.Once{}
	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	c.once.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.references, c.functions = extract(c.expressions...)
	})
}

// References returns all unique variable traversals, sorted by key.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	return c.references
}

// CalledFunctions returns the names of all called functions, sorted.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	return c.functions
}

// Len returns the number of expressions held.
func (c *Container) Len() int {
	return len(c.expressions)
}
