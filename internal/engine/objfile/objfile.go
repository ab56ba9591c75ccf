// Package objfile exports meshed voxel buffers as Wavefront OBJ text.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/voxmesh/internal/engine/voxelbuffer"
)

// Writer writes meshed blocks as Wavefront OBJ objects. Several buffers
// can be written to one file; indices continue across objects.
type Writer struct {
	w        *bufio.Writer
	vertices int // Vertices written so far, including segment ends
	normals  int
}

// NewWriter creates a writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteObject writes buf as a named object. Vertex colors follow the
// position on each v line. With hermite set, the buffer's Hermite debug
// segments are written as l elements.
func (o *Writer) WriteObject(name string, buf *voxelbuffer.Buffer, hermite bool) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return errors.Errorf("invalid OBJ object name %q", name)
	}

	w := o.w
	fmt.Fprintf(w, "o %s\n", name)
	for _, m := range buf.Materials() {
		fmt.Fprintf(w, "# material %s %s\n", m.Name, m.Diffuse)
	}

	base := o.vertices + 1
	normalBase := o.normals + 1
	for _, p := range buf.Vertices() {
		fmt.Fprintf(w, "v %g %g %g %g %g %g\n",
			p.Position.X, p.Position.Y, p.Position.Z,
			float32(p.Color[0])/255, float32(p.Color[1])/255, float32(p.Color[2])/255)
	}
	for _, p := range buf.Vertices() {
		n := p.UnitNormal()
		fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	indices := buf.Indices()
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n",
			base+a, normalBase+a, base+b, normalBase+b, base+c, normalBase+c)
	}
	o.vertices += buf.VertexCount()
	o.normals += buf.VertexCount()

	if hermite {
		segments := buf.HermiteSegments()
		for _, p := range segments {
			fmt.Fprintf(w, "v %g %g %g\n", p.X, p.Y, p.Z)
		}
		first := o.vertices + 1
		for i := 0; i+1 < len(segments); i += 2 {
			fmt.Fprintf(w, "l %d %d\n", first+i, first+i+1)
		}
		o.vertices += len(segments)
	}

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (o *Writer) Flush() error {
	return errors.Wrap(o.w.Flush(), "flushing OBJ data")
}

// Write writes a single buffer as a complete OBJ file.
func Write(w io.Writer, name string, buf *voxelbuffer.Buffer, hermite bool) error {
	o := NewWriter(w)
	if err := o.WriteObject(name, buf, hermite); err != nil {
		return err
	}
	return o.Flush()
}
