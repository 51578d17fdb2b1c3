package opc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/Faultbox/threemf/pkg/threemf"
)

// Writer errors.
var (
	ErrDuplicatePart    = errors.New("part already written")
	ErrUnknownImageType = errors.New("unrecognized image data")
	ErrWriterClosed     = errors.New("package writer is closed")
)

// Writer builds a package. Parts are streamed into the archive as they
// are added; content types and relationships are written on Close.
type Writer struct {
	zw      *zip.Writer
	method  uint16
	types   *ContentTypes
	rels    map[string][]Relationship // source part -> relationships
	sources []string                  // sources in first-use order
	written map[string]bool
	counts  map[string]int // relationship type -> parts numbered so far
	model   *threemf.Model
	closed  bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the deflate level. flate.NoCompression stores
// parts uncompressed.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		if level == flate.NoCompression {
			w.method = zip.Store
			return
		}
		w.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}
}

// NewWriter returns a Writer that writes the package to out.
func NewWriter(out io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		zw:      zip.NewWriter(out),
		method:  zip.Deflate,
		types:   newContentTypes(),
		rels:    make(map[string][]Relationship),
		written: make(map[string]bool),
		counts:  make(map[string]int),
	}
	w.types.Defaults["rels"] = ContentTypeRelationships
	w.types.Defaults["model"] = ContentTypeModel
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddPart writes a part. When relType is not empty, a relationship of
// that type is added from the package to the part.
func (w *Writer) AddPart(name string, data []byte, contentType, relType string) error {
	if err := w.writePart(name, data, contentType); err != nil {
		return err
	}
	if relType != "" {
		w.AddRelationship("/", name, relType)
	}
	return nil
}

// AddRelationship records a relationship from source to target. Use "/"
// as source for package-level relationships.
func (w *Writer) AddRelationship(source, target, relType string) {
	source = NormalizePath(source)
	if _, ok := w.rels[source]; !ok {
		w.sources = append(w.sources, source)
	}
	id := fmt.Sprintf("rel%d", len(w.rels[source])+1)
	w.rels[source] = append(w.rels[source], Relationship{ID: id, Type: relType, Target: NormalizePath(target)})
}

// AddTexture stores image data as the next numbered texture part and
// links it from the root model part. It returns the part name.
func (w *Writer) AddTexture(data []byte) (string, error) {
	return w.addNumbered("/3D/Textures/texture", data, RootModelPart, RelTypeTexture)
}

// AddThumbnail stores image data as the next numbered thumbnail part and
// links it from the package. It returns the part name.
func (w *Writer) AddThumbnail(data []byte) (string, error) {
	return w.addNumbered("/Metadata/thumbnail", data, "/", RelTypeThumbnail)
}

func (w *Writer) addNumbered(base string, data []byte, source, relType string) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", ErrUnknownImageType
	}
	w.counts[relType]++
	name := fmt.Sprintf("%s%d.%s", base, w.counts[relType], kind.Extension)
	if err := w.writePart(name, data, kind.MIME.Value); err != nil {
		return "", err
	}
	w.AddRelationship(source, name, relType)
	return name, nil
}

// SetModel sets the root model, written to /3D/3dmodel.model on Close.
func (w *Writer) SetModel(m *threemf.Model) {
	w.model = m
}

// AddModelPart writes a non-root model part and links it from the root
// model part, so components and items can reference it by path.
func (w *Writer) AddModelPart(name string, m *threemf.Model) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := w.writePart(name, buf.Bytes(), ContentTypeModel); err != nil {
		return err
	}
	w.AddRelationship(RootModelPart, name, RelTypeModel)
	return nil
}

// Close writes the root model, content types and relationships, then
// finalizes the archive. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.model != nil {
		var buf bytes.Buffer
		if err := w.model.Encode(&buf); err != nil {
			return fmt.Errorf("encoding root model: %w", err)
		}
		if err := w.AddPart(RootModelPart, buf.Bytes(), ContentTypeModel, RelTypeModel); err != nil {
			return err
		}
	}

	for _, source := range w.sources {
		doc := relationshipsDoc{
			XMLName:       xml.Name{Space: nsRelationships, Local: "Relationships"},
			Relationships: w.rels[source],
		}
		data, err := marshalDoc(doc)
		if err != nil {
			return err
		}
		if err := w.writeRaw(RelsPartFor(source), data); err != nil {
			return err
		}
	}

	data, err := marshalDoc(w.types.document())
	if err != nil {
		return err
	}
	if err := w.writeRaw(ContentTypesPart, data); err != nil {
		return err
	}

	w.closed = true
	return w.zw.Close()
}

func (w *Writer) writePart(name string, data []byte, contentType string) error {
	if err := w.writeRaw(name, data); err != nil {
		return err
	}
	if contentType != "" {
		w.types.add(name, contentType)
	}
	return nil
}

func (w *Writer) writeRaw(name string, data []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	key := PartKey(name)
	if w.written[key] {
		return fmt.Errorf("%w: %s", ErrDuplicatePart, NormalizePath(name))
	}
	f, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   NormalizePath(name)[1:],
		Method: w.method,
	})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.written[key] = true
	return nil
}

func (c *ContentTypes) document() contentTypesDoc {
	doc := contentTypesDoc{XMLName: xml.Name{Space: nsContentTypes, Local: "Types"}}
	exts := make([]string, 0, len(c.Defaults))
	for ext := range c.Defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		doc.Defaults = append(doc.Defaults, contentTypeDefault{Extension: ext, ContentType: c.Defaults[ext]})
	}
	parts := make([]string, 0, len(c.Overrides))
	for p := range c.Overrides {
		parts = append(parts, p)
	}
	sort.Strings(parts)
	for _, p := range parts {
		doc.Overrides = append(doc.Overrides, contentTypeOverride{PartName: p, ContentType: c.Overrides[p]})
	}
	return doc
}

func marshalDoc(v any) ([]byte, error) {
	data, err := xml.MarshalIndent(v, "", " ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
