package threemf

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeModel = `<?xml version="1.0" encoding="UTF-8"?>
<model unit="millimeter" xml:lang="en-US" xmlns="http://schemas.microsoft.com/3dmanufacturing/core/2015/02"
  xmlns:m="http://schemas.microsoft.com/3dmanufacturing/material/2015/02"
  xmlns:t="http://schemas.microsoft.com/3dmanufacturing/trianglesets/2021/07"
  xmlns:p="http://schemas.microsoft.com/3dmanufacturing/production/2015/06"
  xmlns:x="urn:vendor:extra"
  requiredextensions="m" recommendedextensions="t x">
  <metadata name="Title">Cube</metadata>
  <metadata name="Vendor:Flag" preserve="1" type="xs:string">on</metadata>
  <resources>
    <basematerials id="1">
      <base name="Red" displaycolor="#FF0000"/>
      <base name="Blue" displaycolor="#0000FFCC"/>
    </basematerials>
    <m:colorgroup id="2"><m:color color="#00FF00"/><m:color color="#000000"/></m:colorgroup>
    <x:widget id="77"/>
    <m:multiproperties id="3" pids="1 2" blendmethods="multiply">
      <m:multi pindices="0 1"/>
      <m:multi pindices="1"/>
    </m:multiproperties>
    <object id="10" name="cube" partnumber="C-1" pid="1" pindex="0" type="model">
      <metadatagroup><metadata name="Designer">Ann</metadata></metadatagroup>
      <mesh>
        <vertices>
          <vertex x="0" y="0" z="0"/>
          <vertex x="10" y="0" z="0"/>
          <vertex x="0" y="10" z="0"/>
          <vertex x="0" y="0" z="10.5"/>
        </vertices>
        <triangles>
          <triangle v1="0" v2="2" v3="1"/>
          <triangle v1="0" v2="1" v3="3" pid="2" p1="1"/>
          <triangle v1="1" v2="2" v3="3" p1="0" p2="1" p3="1"/>
          <triangle v1="0" v2="3" v3="2" pid="2" p1="0" p2="1"/>
        </triangles>
        <t:trianglesets>
          <t:triangleset name="Top" identifier="top">
            <t:ref index="0"/>
            <t:refrange startindex="2" endindex="3"/>
          </t:triangleset>
        </t:trianglesets>
      </mesh>
    </object>
    <object id="11" name="pair">
      <components>
        <component objectid="10"/>
        <component objectid="10" transform="1 0 0 0 1 0 0 0 1 20 0 0" p:path="/3D/other.model"/>
      </components>
    </object>
  </resources>
  <build p:UUID="8f4b3a30-8c7c-4a6e-9a4f-1d2b3c4d5e6f">
    <item objectid="11" transform="1 0 0 0 1 0 0 0 1 0 0 5" partnumber="P-11" printable="0" x:tag="keep"/>
  </build>
</model>`

func decodeString(t *testing.T, doc string) *Model {
	t.Helper()
	m, err := DecodeModel(strings.NewReader(doc))
	require.NoError(t, err)
	return m
}

func TestDecodeModel(t *testing.T) {
	m := decodeString(t, cubeModel)

	assert.Equal(t, UnitMillimeter, m.EffectiveUnit())
	assert.Equal(t, "en-US", m.XMLLang)
	tag, err := m.LanguageTag()
	require.NoError(t, err)
	assert.Equal(t, "en-US", tag.String())

	assert.Equal(t, []string{NamespaceMaterials}, m.RequiredExtensions)
	assert.Equal(t, []string{NamespaceTriangleSets, "urn:vendor:extra"}, m.RecommendedExtensions)
	assert.Equal(t, map[string]string{"x": "urn:vendor:extra"}, m.CustomNamespaces)
	assert.True(t, m.SupportsRequiredExtensions())
	assert.Equal(t, []string{"urn:vendor:extra"}, m.UnsupportedRecommendedExtensions())

	require.Len(t, m.Metadata, 2)
	title, ok := MetadataValue(m.Metadata, MetaTitle)
	assert.True(t, ok)
	assert.Equal(t, "Cube", title)
	assert.True(t, m.Metadata[0].IsWellKnown())
	assert.False(t, m.Metadata[1].IsWellKnown())
	require.NotNil(t, m.Metadata[1].Preserve)
	assert.True(t, *m.Metadata[1].Preserve)

	// x:widget is unknown and skipped
	require.Equal(t, 5, m.Resources.Len())

	base, ok := m.Resources.Resource(1).(*BaseMaterialGroup)
	require.True(t, ok)
	assert.Equal(t, []BaseMaterial{
		{Name: "Red", DisplayColor: RGB(0xFF, 0, 0)},
		{Name: "Blue", DisplayColor: Color{0, 0, 0xFF, 0xCC}},
	}, base.Materials)

	colors, ok := m.Resources.Resource(2).(*ColorGroup)
	require.True(t, ok)
	assert.Len(t, colors.Colors, 2)

	cube := m.Resources.Object(10)
	require.NotNil(t, cube)
	assert.True(t, cube.IsMesh())
	assert.Equal(t, "cube", cube.Name)
	assert.Equal(t, "C-1", cube.PartNumber)
	assert.Equal(t, ObjectModel, cube.EffectiveType())
	assert.Len(t, cube.Metadata, 1)
	assert.Len(t, cube.Mesh.Vertices, 4)
	assert.Equal(t, 10.5, cube.Mesh.Vertices[3].Z)
	require.Len(t, cube.Mesh.TriangleSets, 1)
	assert.Equal(t, []IndexRange{{0, 0}, {2, 3}}, cube.Mesh.TriangleSets[0].Ranges)

	pair := m.Resources.Object(11)
	require.NotNil(t, pair)
	assert.False(t, pair.IsMesh())
	require.Len(t, pair.Components, 2)
	assert.Nil(t, pair.Components[0].Transform)
	assert.Equal(t, "/3D/other.model", pair.Components[1].Path)
	require.NotNil(t, pair.Components[1].Transform)
	assert.Equal(t, Translation(20, 0, 0), *pair.Components[1].Transform)

	require.NotNil(t, m.Build.UUID)
	require.Len(t, m.Build.Items, 1)
	item := m.Build.Items[0]
	assert.Equal(t, ResourceID(11), item.ObjectID)
	assert.Equal(t, "P-11", item.PartNumber)
	require.NotNil(t, item.Printable)
	assert.False(t, *item.Printable)
	require.Len(t, item.CustomAttributes, 1)
	assert.Equal(t, "urn:vendor:extra", item.CustomAttributes[0].Name.Space)
	assert.Equal(t, "keep", item.CustomAttributes[0].Value)
}

func TestTriangleResolvedProperties(t *testing.T) {
	m := decodeString(t, cubeModel)
	cube := m.Resources.Object(10)
	tris := cube.Mesh.Triangles

	// inherits pid/pindex from the object
	assert.Equal(t, []PropertyReference{{GroupID: 1, Index: 0}}, tris[0].ResolvedProperties(cube))
	// own pid, uniform index
	assert.Equal(t, []PropertyReference{{GroupID: 2, Index: 1}}, tris[1].ResolvedProperties(cube))
	// object pid, per-vertex indices
	assert.Equal(t, []PropertyReference{
		{GroupID: 1, Index: 0}, {GroupID: 1, Index: 1}, {GroupID: 1, Index: 1},
	}, tris[2].ResolvedProperties(cube))
	// p3 missing, so the index is uniform
	assert.False(t, tris[3].Properties.PerVertex)

	bare := &Object{}
	assert.Nil(t, Triangle{}.ResolvedProperties(bare))
}

func TestMultipropertiesLayerSequences(t *testing.T) {
	m := decodeString(t, cubeModel)
	multi, ok := m.Resources.Resource(3).(*Multiproperties)
	require.True(t, ok)

	seqs := multi.LayerSequences()
	require.Len(t, seqs, 2)
	assert.Equal(t, []Layer{
		{Property: PropertyReference{GroupID: 1, Index: 0}, BlendMethod: BlendMix},
		{Property: PropertyReference{GroupID: 2, Index: 1}, BlendMethod: BlendMultiply},
	}, seqs[0])
	// short pindices default to 0
	assert.Equal(t, ResourceIndex(0), seqs[1][1].Property.Index)
}

func TestRoundTrip(t *testing.T) {
	original := decodeString(t, cubeModel)

	var buf bytes.Buffer
	require.NoError(t, original.Encode(&buf))
	out := buf.String()

	assert.Contains(t, out, `<model xmlns="`+NamespaceCore+`"`)
	assert.NotContains(t, out, `xmlns:=`)
	assert.Contains(t, out, `<m:colorgroup id="2">`)
	assert.Contains(t, out, `p:path="/3D/other.model"`)
	assert.Contains(t, out, `<t:refrange startindex="2" endindex="3">`)
	assert.Contains(t, out, `requiredextensions="m"`)
	assert.Contains(t, out, `recommendedextensions="t x"`)
	assert.NotContains(t, out, "widget")

	again, err := DecodeModel(&buf)
	require.NoError(t, err)

	assert.Equal(t, original.Unit, again.Unit)
	assert.Equal(t, original.Metadata, again.Metadata)
	assert.Equal(t, original.Resources, again.Resources)
	assert.Equal(t, original.Build, again.Build)
	assert.Equal(t, original.CustomNamespaces, again.CustomNamespaces)
	assert.ElementsMatch(t, original.RecommendedExtensions, again.RecommendedExtensions)
}

func TestRoundTripBuiltModel(t *testing.T) {
	unit := UnitInch
	m := &Model{Unit: &unit}
	group := &ColorGroup{}
	red := group.AddColor(RGB(0xFF, 0, 0))
	gid := m.Resources.Add(group)

	obj := &Object{
		PropertyGroupID: &gid,
		PropertyIndex:   &red,
		Mesh: &Mesh{
			Vertices:  []Vertex{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Triangles: []Triangle{{V1: 0, V2: 1, V3: 2}},
		},
	}
	oid := m.Resources.Add(obj)
	m.Build.Items = append(m.Build.Items, Item{ObjectID: oid})

	assert.Equal(t, ResourceID(1), gid)
	assert.Equal(t, ResourceID(2), oid)

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	again, err := DecodeModel(&buf)
	require.NoError(t, err)

	assert.Equal(t, UnitInch, again.EffectiveUnit())
	assert.Equal(t, m.Resources, again.Resources)
	assert.Equal(t, m.Build, again.Build)
	assert.Empty(t, again.RequiredExtensions)
}

func TestEncodeAssignsUUIDsWhenProductionRequired(t *testing.T) {
	m := &Model{RequiredExtensions: []string{NamespaceProduction}}
	m.Resources.Add(&Object{Mesh: &Mesh{}})
	m.Build.Items = []Item{{ObjectID: 1}}

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	again, err := DecodeModel(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{NamespaceProduction}, again.RequiredExtensions)
	require.NotNil(t, again.Build.UUID)
	require.NotNil(t, again.Build.Items[0].UUID)
	require.NotNil(t, again.Resources.Object(1).UUID)
	assert.NotEqual(t, uuid.Nil, *again.Build.UUID)

	// the source model is left untouched
	assert.Nil(t, m.Build.UUID)
}

func TestExtensionListsSurviveRoundTrip(t *testing.T) {
	doc := `<model xmlns="` + NamespaceCore + `" xmlns:m="` + NamespaceMaterials + `"
  requiredextensions="m q" recommendedextensions="zz"><resources/><build/></model>`
	m := decodeString(t, doc)
	assert.Equal(t, []string{NamespaceMaterials, "q"}, m.RequiredExtensions)
	assert.Equal(t, []string{"zz"}, m.RecommendedExtensions)

	m.RecommendedExtensions = append(m.RecommendedExtensions, "urn:vendor:feature")

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	assert.Contains(t, buf.String(), `requiredextensions="m q"`)
	assert.Contains(t, buf.String(), `recommendedextensions="zz ext1"`)
	assert.Contains(t, buf.String(), `xmlns:ext1="urn:vendor:feature"`)

	again, err := DecodeModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.RequiredExtensions, again.RequiredExtensions)
	assert.Equal(t, m.RecommendedExtensions, again.RecommendedExtensions)
}

func TestUnknownResourceTolerance(t *testing.T) {
	doc := `<model xmlns="` + NamespaceCore + `" xmlns:v="` + NamespaceVolumetric + `">
  <resources>
    <v:volumetricstack id="1"/>
    <object id="2"><mesh><vertices/><triangles/></mesh></object>
    <somethingelse/>
  </resources>
  <build/>
</model>`

	var skipped []string
	m, err := DecodeOptions{OnUnknown: func(_, e Name) { skipped = append(skipped, e.Local) }}.
		Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Resources.Len())
	assert.NotNil(t, m.Resources.Object(2))
	assert.Equal(t, []string{"volumetricstack", "somethingelse"}, skipped)
}

func TestDecodeErrors(t *testing.T) {
	wrap := func(resources string) string {
		return `<model xmlns="` + NamespaceCore + `" xmlns:m="` + NamespaceMaterials + `"><resources>` +
			resources + `</resources><build/></model>`
	}

	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, err error)
	}{
		{
			name: "not a model",
			doc:  `<svg xmlns="http://www.w3.org/2000/svg"/>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotAModel)
			},
		},
		{
			name: "missing resources",
			doc:  `<model xmlns="` + NamespaceCore + `"><build/></model>`,
			check: func(t *testing.T, err error) {
				var ee *ElementError
				require.ErrorAs(t, err, &ee)
				assert.Equal(t, "resources", ee.Element)
				assert.ErrorIs(t, err, ErrMissingElement)
			},
		},
		{
			name: "missing object id",
			doc:  wrap(`<object><mesh><vertices/><triangles/></mesh></object>`),
			check: func(t *testing.T, err error) {
				var ae *AttributeError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "object", ae.Element.Local)
				assert.Equal(t, "id", ae.Attribute.Local)
				assert.ErrorIs(t, err, ErrMissingAttribute)
			},
		},
		{
			name: "malformed required color",
			doc:  wrap(`<m:colorgroup id="1"><m:color color="red"/></m:colorgroup>`),
			check: func(t *testing.T, err error) {
				var ae *AttributeError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "color", ae.Element.Local)
				assert.Equal(t, "red", ae.Raw)
			},
		},
		{
			name: "object without content",
			doc:  wrap(`<object id="1"/>`),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingElement)
			},
		},
		{
			name: "prefixed own-namespace attribute accepted",
			doc:  wrap(`<m:texture2d m:id="1" contenttype="image/png"/>`),
			check: func(t *testing.T, err error) {
				var ae *AttributeError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "path", ae.Attribute.Local)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModel(strings.NewReader(tt.doc))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOptionalMalformedIsAbsent(t *testing.T) {
	doc := `<model xmlns="` + NamespaceCore + `" unit="lightyear"><resources>
<object id="1" type="banana" pid="x"><components><component objectid="2" transform="1 2 3"/></components></object>
</resources><build/></model>`
	m := decodeString(t, doc)

	assert.Nil(t, m.Unit)
	obj := m.Resources.Object(1)
	require.NotNil(t, obj)
	assert.Nil(t, obj.Type)
	assert.Nil(t, obj.PropertyGroupID)
	assert.Nil(t, obj.Components[0].Transform)
}

func TestDisplayPropertyDefaults(t *testing.T) {
	doc := `<model xmlns="` + NamespaceCore + `" xmlns:m="` + NamespaceMaterials + `"><resources>
<m:pbspeculardisplayproperties id="1"><m:pbspecular name="a"/><m:pbspecular name="b" specularcolor="#102030" glossiness="0.5"/></m:pbspeculardisplayproperties>
<m:pbmetallictexturedisplayproperties id="2" name="mt" metallictextureid="5" roughnesstextureid="6" metallicfactor="0.25"/>
<m:pbspeculartexturedisplayproperties id="3" name="st" speculartextureid="5" glossinesstextureid="6"/>
<m:texture2d id="5" path="/3D/Textures/a.png" contenttype="image/png" tilestyleu="clamp"/>
<m:translucentdisplayproperties id="7"><m:translucent name="glass" attenuation="0.1 0.2 0.3" refractiveindex="1.5 1.5 1.5"/></m:translucentdisplayproperties>
</resources><build/></model>`
	m := decodeString(t, doc)

	spec := m.Resources.Resource(1).(*SpecularDisplayProperties)
	c, g := spec.Speculars[0].EffectiveValues()
	assert.Equal(t, DefaultSpecularColor, c)
	assert.Equal(t, 0.0, g)
	c, g = spec.Speculars[1].EffectiveValues()
	assert.Equal(t, RGB(0x10, 0x20, 0x30), c)
	assert.Equal(t, 0.5, g)

	mt := m.Resources.Resource(2).(*MetallicTextureDisplayProperties)
	base, metallic, rough := mt.EffectiveFactors()
	assert.Equal(t, White, base)
	assert.Equal(t, 0.25, metallic)
	assert.Equal(t, 1.0, rough)

	st := m.Resources.Resource(3).(*SpecularTextureDisplayProperties)
	diffuse, specular, gloss := st.EffectiveFactors()
	assert.Equal(t, White, diffuse)
	assert.Equal(t, White, specular)
	assert.Equal(t, 1.0, gloss)

	tex := m.Resources.Resource(5).(*Texture2D)
	u, v := tex.EffectiveTileStyles()
	assert.Equal(t, TileClamp, u)
	assert.Equal(t, TileWrap, v)
	assert.Equal(t, FilterAuto, tex.EffectiveFilter())

	tr := m.Resources.Resource(7).(*TranslucentDisplayProperties)
	assert.Equal(t, Numbers{1.5, 1.5, 1.5}, tr.Translucents[0].RefractiveIndices)
}

func TestAttributeErrorMessage(t *testing.T) {
	err := &AttributeError{Element: elemTexture2D, Attribute: attrPath, Err: ErrMissingAttribute}
	assert.Equal(t, "texture2d: missing attribute m:path", err.Error())
	assert.True(t, errors.Is(err, ErrMissingAttribute))
}
