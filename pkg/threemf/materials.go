package threemf

import (
	"github.com/Faultbox/threemf/pkg/xmltree"
)

// BaseMaterial is one <base> entry.
type BaseMaterial struct {
	Name         string
	DisplayColor Color
}

// BaseMaterialGroup is a core <basematerials> resource.
type BaseMaterialGroup struct {
	ID                  ResourceID
	DisplayPropertiesID *ResourceID
	Materials           []BaseMaterial
}

func (g *BaseMaterialGroup) ResourceID() ResourceID      { return g.ID }
func (g *BaseMaterialGroup) ElementName() Name           { return elemBaseMaterials }
func (g *BaseMaterialGroup) setResourceID(id ResourceID) { g.ID = id }

func decodeBaseMaterialGroup(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	g := &BaseMaterialGroup{
		ID:                  r.ID(attrID),
		DisplayPropertiesID: r.OptID(attrDisplayPropertiesID),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemBase) {
		br := readAttrs(e)
		m := BaseMaterial{Name: br.String(attrName), DisplayColor: br.Color(attrDisplayColor)}
		if err := br.Err(); err != nil {
			return nil, err
		}
		g.Materials = append(g.Materials, m)
	}
	return g, nil
}

func (g *BaseMaterialGroup) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemBaseMaterials.Space, elemBaseMaterials.Local)
	w := writeAttrs(n)
	w.ID(attrID, g.ID)
	w.OptID(attrDisplayPropertiesID, g.DisplayPropertiesID)
	for _, m := range g.Materials {
		e := writeAttrs(n.AddElement(elemBase.Space, elemBase.Local))
		e.String(attrName, m.Name)
		e.String(attrDisplayColor, m.DisplayColor.String())
	}
}

// ColorGroup is an m:colorgroup resource.
type ColorGroup struct {
	ID                  ResourceID
	DisplayPropertiesID *ResourceID
	Colors              []Color
}

func (g *ColorGroup) ResourceID() ResourceID      { return g.ID }
func (g *ColorGroup) ElementName() Name           { return elemColorGroup }
func (g *ColorGroup) setResourceID(id ResourceID) { g.ID = id }

// AddColor appends a color and returns its index.
func (g *ColorGroup) AddColor(c Color) ResourceIndex {
	g.Colors = append(g.Colors, c)
	return ResourceIndex(len(g.Colors) - 1)
}

func decodeColorGroup(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	g := &ColorGroup{
		ID:                  r.ID(attrMID),
		DisplayPropertiesID: r.OptID(attrDisplayPropertiesID),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemColor) {
		cr := readAttrs(e)
		c := cr.Color(attrColor)
		if err := cr.Err(); err != nil {
			return nil, err
		}
		g.Colors = append(g.Colors, c)
	}
	return g, nil
}

func (g *ColorGroup) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemColorGroup.Space, elemColorGroup.Local)
	w := writeAttrs(n)
	w.ID(attrMID, g.ID)
	w.OptID(attrDisplayPropertiesID, g.DisplayPropertiesID)
	for _, c := range g.Colors {
		writeAttrs(n.AddElement(elemColor.Space, elemColor.Local)).String(attrColor, c.String())
	}
}

// CompositeMaterialGroup mixes base materials in fixed proportions.
type CompositeMaterialGroup struct {
	ID                  ResourceID
	BaseMaterialGroupID ResourceID      // matid
	MaterialIndices     ResourceIndices // matindices
	DisplayPropertiesID *ResourceID
	Composites          []Numbers
}

func (g *CompositeMaterialGroup) ResourceID() ResourceID      { return g.ID }
func (g *CompositeMaterialGroup) ElementName() Name           { return elemCompositeMaterials }
func (g *CompositeMaterialGroup) setResourceID(id ResourceID) { g.ID = id }

func decodeCompositeMaterialGroup(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	g := &CompositeMaterialGroup{
		ID:                  r.ID(attrMID),
		BaseMaterialGroupID: r.ID(attrMatID),
		MaterialIndices:     required(r, attrMatIndices, ParseResourceIndices),
		DisplayPropertiesID: r.OptID(attrDisplayPropertiesID),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemComposite) {
		cr := readAttrs(e)
		values := required(cr, attrValues, ParseNumbers)
		if err := cr.Err(); err != nil {
			return nil, err
		}
		g.Composites = append(g.Composites, values)
	}
	return g, nil
}

func (g *CompositeMaterialGroup) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemCompositeMaterials.Space, elemCompositeMaterials.Local)
	w := writeAttrs(n)
	w.ID(attrMID, g.ID)
	w.ID(attrMatID, g.BaseMaterialGroupID)
	w.String(attrMatIndices, g.MaterialIndices.String())
	w.OptID(attrDisplayPropertiesID, g.DisplayPropertiesID)
	for _, c := range g.Composites {
		writeAttrs(n.AddElement(elemComposite.Space, elemComposite.Local)).String(attrValues, c.String())
	}
}

// Multiproperties layers several property groups onto one surface.
type Multiproperties struct {
	ID           ResourceID
	GroupIDs     []ResourceID  // pids
	BlendMethods []BlendMethod // one fewer than GroupIDs; may be empty
	Elements     []ResourceIndices
}

func (m *Multiproperties) ResourceID() ResourceID      { return m.ID }
func (m *Multiproperties) ElementName() Name           { return elemMultiproperties }
func (m *Multiproperties) setResourceID(id ResourceID) { m.ID = id }

// Layer is one property reference within a multi entry.
type Layer struct {
	Property    PropertyReference
	BlendMethod BlendMethod
}

// LayerSequences expands every multi entry into its layers. Layer i blends
// with BlendMethods[i-1]; missing indices default to 0 and missing blend
// methods to mix.
func (m *Multiproperties) LayerSequences() [][]Layer {
	out := make([][]Layer, len(m.Elements))
	for e, indices := range m.Elements {
		layers := make([]Layer, len(m.GroupIDs))
		for i, gid := range m.GroupIDs {
			var idx ResourceIndex
			if i < len(indices) {
				idx = indices[i]
			}
			blend := BlendMix
			if i > 0 && i-1 < len(m.BlendMethods) {
				blend = m.BlendMethods[i-1]
			}
			layers[i] = Layer{Property: PropertyReference{GroupID: gid, Index: idx}, BlendMethod: blend}
		}
		out[e] = layers
	}
	return out
}

func decodeMultiproperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	m := &Multiproperties{
		ID:       r.ID(attrMID),
		GroupIDs: required(r, attrPIDs, ParseResourceIDs),
	}
	if blends := optional(r, attrBlendMethods, parseBlendMethods); blends != nil {
		m.BlendMethods = *blends
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemMulti) {
		mr := readAttrs(e)
		indices := required(mr, attrPIndices, ParseResourceIndices)
		if err := mr.Err(); err != nil {
			return nil, err
		}
		m.Elements = append(m.Elements, indices)
	}
	return m, nil
}

func (m *Multiproperties) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemMultiproperties.Space, elemMultiproperties.Local)
	w := writeAttrs(n)
	w.ID(attrMID, m.ID)
	w.String(attrPIDs, formatResourceIDs(m.GroupIDs))
	if len(m.BlendMethods) > 0 {
		w.String(attrBlendMethods, formatBlendMethods(m.BlendMethods))
	}
	for _, indices := range m.Elements {
		writeAttrs(n.AddElement(elemMulti.Space, elemMulti.Local)).String(attrPIndices, indices.String())
	}
}

// Texture2D names an image part used by texture coordinate groups.
type Texture2D struct {
	ID          ResourceID
	Path        string
	ContentType TextureContentType
	TileStyleU  *TileStyle
	TileStyleV  *TileStyle
	Filter      *Filter
}

func (t *Texture2D) ResourceID() ResourceID      { return t.ID }
func (t *Texture2D) ElementName() Name           { return elemTexture2D }
func (t *Texture2D) setResourceID(id ResourceID) { t.ID = id }

// EffectiveTileStyles returns the tile styles with defaults applied.
func (t *Texture2D) EffectiveTileStyles() (u, v TileStyle) {
	u, v = TileWrap, TileWrap
	if t.TileStyleU != nil {
		u = *t.TileStyleU
	}
	if t.TileStyleV != nil {
		v = *t.TileStyleV
	}
	return u, v
}

// EffectiveFilter returns the filter with its default applied.
func (t *Texture2D) EffectiveFilter() Filter {
	if t.Filter != nil {
		return *t.Filter
	}
	return FilterAuto
}

func decodeTexture2D(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	t := &Texture2D{
		ID:          r.ID(attrMID),
		Path:        r.String(attrPath),
		ContentType: required(r, attrContentType, ParseTextureContentType),
		TileStyleU:  optional(r, attrTileStyleU, ParseTileStyle),
		TileStyleV:  optional(r, attrTileStyleV, ParseTileStyle),
		Filter:      optional(r, attrFilter, ParseFilter),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Texture2D) encode(parent *xmltree.Node, _ encodeState) {
	w := writeAttrs(parent.AddElement(elemTexture2D.Space, elemTexture2D.Local))
	w.ID(attrMID, t.ID)
	w.String(attrPath, t.Path)
	w.String(attrContentType, t.ContentType.String())
	if t.TileStyleU != nil {
		w.String(attrTileStyleU, t.TileStyleU.String())
	}
	if t.TileStyleV != nil {
		w.String(attrTileStyleV, t.TileStyleV.String())
	}
	if t.Filter != nil {
		w.String(attrFilter, t.Filter.String())
	}
}

// TextureCoordinate is one m:tex2coord entry.
type TextureCoordinate struct {
	U, V float64
}

// Texture2DGroup lists texture coordinates into one Texture2D.
type Texture2DGroup struct {
	ID                  ResourceID
	TextureID           ResourceID // texid
	DisplayPropertiesID *ResourceID
	Coordinates         []TextureCoordinate
}

func (g *Texture2DGroup) ResourceID() ResourceID      { return g.ID }
func (g *Texture2DGroup) ElementName() Name           { return elemTexture2DGroup }
func (g *Texture2DGroup) setResourceID(id ResourceID) { g.ID = id }

func decodeTexture2DGroup(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	g := &Texture2DGroup{
		ID:                  r.ID(attrMID),
		TextureID:           r.ID(attrTexID),
		DisplayPropertiesID: r.OptID(attrDisplayPropertiesID),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemTex2Coord) {
		cr := readAttrs(e)
		c := TextureCoordinate{U: cr.Number(attrU), V: cr.Number(attrV)}
		if err := cr.Err(); err != nil {
			return nil, err
		}
		g.Coordinates = append(g.Coordinates, c)
	}
	return g, nil
}

func (g *Texture2DGroup) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemTexture2DGroup.Space, elemTexture2DGroup.Local)
	w := writeAttrs(n)
	w.ID(attrMID, g.ID)
	w.ID(attrTexID, g.TextureID)
	w.OptID(attrDisplayPropertiesID, g.DisplayPropertiesID)
	for _, c := range g.Coordinates {
		cw := writeAttrs(n.AddElement(elemTex2Coord.Space, elemTex2Coord.Local))
		cw.Number(attrU, c.U)
		cw.Number(attrV, c.V)
	}
}
