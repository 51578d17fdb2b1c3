package opc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/Faultbox/threemf/pkg/encoding"
	"github.com/Faultbox/threemf/pkg/threemf"
)

// Reader errors.
var (
	ErrPartNotFound           = errors.New("part not found")
	ErrNoRootModel            = errors.New("package has no root model relationship")
	ErrMalformedRelationships = errors.New("malformed relationships part")
)

// Reader gives random access to the parts of a package. It is safe for
// concurrent use.
type Reader struct {
	closer io.Closer
	files  map[string]*zip.File // keyed by lower-case part name
}

// Open opens a package file.
func Open(name string) (*Reader, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	r := newReader(&rc.Reader)
	r.closer = rc
	return r, nil
}

// NewReader reads a package from r, which has the given size.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("reading package: %w", err)
	}
	return newReader(zr), nil
}

// FromBytes reads a package held in memory.
func FromBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

func newReader(zr *zip.Reader) *Reader {
	r := &Reader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		r.files[PartKey(f.Name)] = f
	}
	return r
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Parts returns all part names, sorted.
func (r *Reader) Parts() []string {
	out := make([]string, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, NormalizePath(f.Name))
	}
	sort.Strings(out)
	return out
}

// Contains reports whether a part exists. Part names compare
// case-insensitively.
func (r *Reader) Contains(name string) bool {
	_, ok := r.files[PartKey(name)]
	return ok
}

// Size returns the uncompressed size of a part.
func (r *Reader) Size(name string) (int64, error) {
	f, ok := r.files[PartKey(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPartNotFound, NormalizePath(name))
	}
	return int64(f.UncompressedSize64), nil
}

// ReadPart returns the content of a part.
func (r *Reader) ReadPart(name string) ([]byte, error) {
	f, ok := r.files[PartKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, NormalizePath(name))
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", NormalizePath(name), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", NormalizePath(name), err)
	}
	return data, nil
}

// Relationships returns the relationships whose source is the given part.
// Use "/" for package-level relationships. A part without a
// relationships part has none.
func (r *Reader) Relationships(source string) ([]Relationship, error) {
	relsPart := RelsPartFor(source)
	data, err := r.ReadPart(relsPart)
	if errors.Is(err, ErrPartNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc relationshipsDoc
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = encoding.CharsetReader
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRelationships, relsPart, err)
	}
	if doc.XMLName.Local != "Relationships" {
		return nil, fmt.Errorf("%w: %s: unexpected root %s", ErrMalformedRelationships, relsPart, doc.XMLName.Local)
	}
	return doc.Relationships, nil
}

// RootModelPath returns the part named by the package-level 3D model
// relationship.
func (r *Reader) RootModelPath() (string, error) {
	rels, err := r.Relationships("/")
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.Type == RelTypeModel {
			if rel.Target == "" {
				return "", fmt.Errorf("%w: empty model target", ErrMalformedRelationships)
			}
			return ResolveTarget("/", rel.Target), nil
		}
	}
	return "", ErrNoRootModel
}

// ContentTypes parses [Content_Types].xml.
func (r *Reader) ContentTypes() (*ContentTypes, error) {
	data, err := r.ReadPart(ContentTypesPart)
	if err != nil {
		return nil, err
	}
	var doc contentTypesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}
	ct := newContentTypes()
	for _, d := range doc.Defaults {
		ct.Defaults[extension("x."+d.Extension)] = d.ContentType
	}
	for _, o := range doc.Overrides {
		ct.Overrides[NormalizePath(o.PartName)] = o.ContentType
	}
	return ct, nil
}

// Model decodes the root model part.
func (r *Reader) Model() (*threemf.Model, error) {
	name, err := r.RootModelPath()
	if err != nil {
		return nil, err
	}
	return r.ModelAt(name, threemf.DecodeOptions{})
}

// ModelAt decodes the model part at name.
func (r *Reader) ModelAt(name string, opts threemf.DecodeOptions) (*threemf.Model, error) {
	data, err := r.ReadPart(name)
	if err != nil {
		return nil, err
	}
	m, err := opts.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", NormalizePath(name), err)
	}
	return m, nil
}
