package threemf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

func parseElement(t *testing.T, doc string) *xmltree.Node {
	t.Helper()
	n, err := xmltree.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func TestLookupAttrOwnNamespace(t *testing.T) {
	// An attribute in the element's own namespace may be written either way.
	unprefixed := parseElement(t, `<m:colorgroup xmlns:m="`+NamespaceMaterials+`" id="4"/>`)
	prefixed := parseElement(t, `<m:colorgroup xmlns:m="`+NamespaceMaterials+`" m:id="4"/>`)

	for _, n := range []*xmltree.Node{unprefixed, prefixed} {
		v, ok := lookupAttr(n, attrMID)
		assert.True(t, ok)
		assert.Equal(t, "4", v)
	}
}

func TestLookupAttrCoreIsNotMatchedPrefixed(t *testing.T) {
	// A core attribute is never matched against a prefixed one.
	n := parseElement(t, `<object xmlns="`+NamespaceCore+`" xmlns:c="`+NamespaceCore+`" c:name="x"/>`)
	_, ok := lookupAttr(n, attrName)
	assert.False(t, ok)

	// Nor is an empty-space identity, which also means core.
	_, ok = lookupAttr(n, Name{Local: "name"})
	assert.False(t, ok)
}

func TestLookupAttrForeignNamespace(t *testing.T) {
	n := parseElement(t, `<component xmlns="`+NamespaceCore+`" xmlns:p="`+NamespaceProduction+`" objectid="1" p:path="/3D/a.model" path="wrong"/>`)
	v, ok := lookupAttr(n, attrProdPath)
	assert.True(t, ok)
	assert.Equal(t, "/3D/a.model", v)

	// Core attribute on a materials element is missing.
	m := parseElement(t, `<m:texture2d xmlns:m="`+NamespaceMaterials+`" objectid="1"/>`)
	_, ok = lookupAttr(m, attrObjectID)
	assert.False(t, ok)
}

func TestSetAttrCollapsesOwnNamespace(t *testing.T) {
	n := xmltree.NewElement(NamespaceMaterials, "colorgroup")
	setAttr(n, attrMID, "3")
	setAttr(n, attrUUID, "x")

	v, ok := n.Attr("", "id")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = n.Attr(NamespaceProduction, "UUID")
	assert.True(t, ok)

	core := xmltree.NewElement(NamespaceCore, "object")
	setAttr(core, attrID, "9")
	_, ok = core.Attr("", "id")
	assert.True(t, ok)
}

func TestChildIsNamespaceExact(t *testing.T) {
	n := parseElement(t, `<object xmlns="`+NamespaceCore+`" xmlns:m="`+NamespaceMaterials+`"><m:mesh/></object>`)
	assert.Nil(t, child(n, elemMesh))
	assert.NotNil(t, child(n, materials("mesh")))
}

func TestAttrReaderSticksToFirstError(t *testing.T) {
	n := parseElement(t, `<vertex xmlns="`+NamespaceCore+`" x="a" y="1"/>`)
	r := readAttrs(n)
	r.Number(attrX)
	r.Number(attrY)
	r.Number(attrZ)

	var ae *AttributeError
	require.ErrorAs(t, r.Err(), &ae)
	assert.Equal(t, "x", ae.Attribute.Local)
	assert.Equal(t, "a", ae.Raw)

	var ve *ValueError
	assert.ErrorAs(t, r.Err(), &ve)
}
