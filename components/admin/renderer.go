package admin

import "io"

// Renderer is the template renderer contract the controller needs.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
