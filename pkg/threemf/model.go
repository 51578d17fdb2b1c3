package threemf

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Model is the content of one model part.
type Model struct {
	Unit     *Unit
	XMLLang  string // xml:lang
	Language string // language

	// RequiredExtensions and RecommendedExtensions hold namespace URIs.
	// Prefixes that resolve to no namespace are kept as written.
	RequiredExtensions    []string
	RecommendedExtensions []string

	// CustomNamespaces maps prefix to URI for declarations outside the
	// known 3MF namespaces, so they survive a round trip.
	CustomNamespaces map[string]string

	Metadata  []Metadata
	Resources ResourceContainer
	Build     Build
}

// EffectiveUnit returns the unit, defaulting to millimeter.
func (m *Model) EffectiveUnit() Unit {
	if m.Unit != nil {
		return *m.Unit
	}
	return UnitMillimeter
}

// LanguageTag parses xml:lang, falling back to the language attribute.
func (m *Model) LanguageTag() (language.Tag, error) {
	raw := m.XMLLang
	if raw == "" {
		raw = m.Language
	}
	if raw == "" {
		return language.Und, nil
	}
	return language.Parse(raw)
}

// Requires reports whether the extension URI is listed as required.
func (m *Model) Requires(uri string) bool {
	for _, u := range m.RequiredExtensions {
		if u == uri {
			return true
		}
	}
	return false
}

// UnsupportedRequiredExtensions returns required extensions this package
// does not decode.
func (m *Model) UnsupportedRequiredExtensions() []string {
	var out []string
	for _, u := range m.RequiredExtensions {
		if !SupportedExtension(u) {
			out = append(out, u)
		}
	}
	return out
}

// UnsupportedRecommendedExtensions returns recommended extensions this
// package does not decode.
func (m *Model) UnsupportedRecommendedExtensions() []string {
	var out []string
	for _, u := range m.RecommendedExtensions {
		if !SupportedExtension(u) {
			out = append(out, u)
		}
	}
	return out
}

// SupportsRequiredExtensions reports whether every required extension is
// supported.
func (m *Model) SupportsRequiredExtensions() bool {
	return len(m.UnsupportedRequiredExtensions()) == 0
}

// DecodeOptions tunes model decoding.
type DecodeOptions struct {
	// OnUnknown is called for each element skipped because no decoder is
	// registered for it.
	OnUnknown func(parent, element Name)
}

// DecodeModel parses a model part with default options.
func DecodeModel(r io.Reader) (*Model, error) {
	return DecodeOptions{}.Decode(r)
}

// Decode parses a model part.
func (o DecodeOptions) Decode(r io.Reader) (*Model, error) {
	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing model xml: %w", err)
	}
	return o.DecodeNode(root)
}

// DecodeNode decodes an already parsed <model> element.
func (o DecodeOptions) DecodeNode(root *xmltree.Node) (*Model, error) {
	if !root.Is(elemModel.Space, elemModel.Local) {
		return nil, fmt.Errorf("%w: found {%s}%s", ErrNotAModel, root.Name.Space, root.Name.Local)
	}

	r := readAttrs(root)
	m := &Model{
		Unit:     optional(r, attrUnit, ParseUnit),
		XMLLang:  r.OptString(attrXMLLang),
		Language: r.OptString(attrLanguage),
	}
	m.RequiredExtensions = resolvePrefixes(root, r.OptString(attrRequiredExtensions))
	m.RecommendedExtensions = resolvePrefixes(root, r.OptString(attrRecommendedExtensions))
	if err := r.Err(); err != nil {
		return nil, err
	}

	for _, ns := range root.Namespaces() {
		if ns.Prefix == "" || ns.URI == NamespaceCore {
			continue
		}
		if _, known := ExtensionByURI(ns.URI); known {
			continue
		}
		if m.CustomNamespaces == nil {
			m.CustomNamespaces = make(map[string]string)
		}
		m.CustomNamespaces[ns.Prefix] = ns.URI
	}

	var err error
	if m.Metadata, err = decodeMetadataList(root); err != nil {
		return nil, err
	}

	resources, err := requireChild(root, elemResources)
	if err != nil {
		return nil, err
	}
	if m.Resources, err = decodeResources(resources, o); err != nil {
		return nil, err
	}

	build, err := requireChild(root, elemBuild)
	if err != nil {
		return nil, err
	}
	if m.Build, err = decodeBuild(build); err != nil {
		return nil, err
	}
	return m, nil
}

func resolvePrefixes(root *xmltree.Node, raw string) []string {
	var out []string
	for _, prefix := range strings.Fields(raw) {
		if uri, ok := root.URIFor(prefix); ok {
			out = append(out, uri)
			continue
		}
		resolved := prefix
		for _, e := range knownExtensions {
			if e.Prefix == prefix {
				resolved = e.URI
				break
			}
		}
		out = append(out, resolved)
	}
	return out
}

// Node builds the XML tree for the model. Every namespace used in the tree
// or listed as an extension is declared on the root.
func (m *Model) Node() *xmltree.Node {
	root := xmltree.NewElement(elemModel.Space, elemModel.Local)
	st := encodeState{assignUUIDs: m.Requires(NamespaceProduction)}

	w := writeAttrs(root)
	if m.Unit != nil {
		w.String(attrUnit, m.Unit.String())
	}
	w.OptString(attrXMLLang, m.XMLLang)
	w.OptString(attrLanguage, m.Language)

	encodeMetadataList(root, m.Metadata)
	m.Resources.encode(root, st)
	m.Build.encode(root, st)

	prefixes := m.declareNamespaces(root)
	if s := extensionPrefixes(m.RequiredExtensions, prefixes); s != "" {
		w.String(attrRequiredExtensions, s)
	}
	if s := extensionPrefixes(m.RecommendedExtensions, prefixes); s != "" {
		w.String(attrRecommendedExtensions, s)
	}
	return root
}

func (m *Model) declareNamespaces(root *xmltree.Node) map[string]string {
	root.Declare("", NamespaceCore)

	used := root.NamespacesInUse()
	for _, uri := range m.RequiredExtensions {
		used[uri] = true
	}
	for _, uri := range m.RecommendedExtensions {
		used[uri] = true
	}

	prefixes := make(map[string]string)
	taken := make(map[string]bool)
	for _, prefix := range sortedPrefixes(keys(m.CustomNamespaces)) {
		root.Declare(prefix, m.CustomNamespaces[prefix])
		prefixes[m.CustomNamespaces[prefix]] = prefix
		taken[prefix] = true
	}
	for _, e := range knownExtensions {
		if !used[e.URI] || taken[e.Prefix] {
			continue
		}
		if _, done := prefixes[e.URI]; done {
			continue
		}
		root.Declare(e.Prefix, e.URI)
		prefixes[e.URI] = e.Prefix
		taken[e.Prefix] = true
	}

	// Extension URIs outside the known set still need a prefix to be listed.
	n := 0
	for _, uri := range append(slices.Clone(m.RequiredExtensions), m.RecommendedExtensions...) {
		if _, done := prefixes[uri]; done || !isNamespaceURI(uri) {
			continue
		}
		prefix := ""
		for prefix == "" || taken[prefix] {
			n++
			prefix = fmt.Sprintf("ext%d", n)
		}
		root.Declare(prefix, uri)
		prefixes[uri] = prefix
		taken[prefix] = true
	}
	return prefixes
}

// isNamespaceURI tells a namespace URI from an unresolved prefix, which
// cannot contain a colon.
func isNamespaceURI(s string) bool {
	return strings.Contains(s, ":")
}

func extensionPrefixes(uris []string, prefixes map[string]string) string {
	var out []string
	for _, uri := range uris {
		if p, ok := prefixes[uri]; ok {
			out = append(out, p)
		} else if !isNamespaceURI(uri) {
			out = append(out, uri)
		}
	}
	return strings.Join(out, " ")
}

func keys(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

// Encode writes the model as an indented XML document.
func (m *Model) Encode(w io.Writer) error {
	return xmltree.Encode(w, m.Node(), xmltree.EncodeOptions{Indent: " "})
}
