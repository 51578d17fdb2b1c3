package threemf

import (
	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Metallic is one m:pbmetallic entry.
type Metallic struct {
	Name         string
	Metallicness float64
	Roughness    float64
}

// MetallicDisplayProperties describes physically based metallic materials.
type MetallicDisplayProperties struct {
	ID        ResourceID
	Metallics []Metallic
}

func (d *MetallicDisplayProperties) ResourceID() ResourceID      { return d.ID }
func (d *MetallicDisplayProperties) ElementName() Name           { return elemMetallicDisplay }
func (d *MetallicDisplayProperties) setResourceID(id ResourceID) { d.ID = id }

func decodeMetallicDisplayProperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	d := &MetallicDisplayProperties{ID: r.ID(attrMID)}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemMetallic) {
		mr := readAttrs(e)
		m := Metallic{
			Name:         mr.String(attrMName),
			Metallicness: mr.Number(attrMetallicness),
			Roughness:    mr.Number(attrRoughness),
		}
		if err := mr.Err(); err != nil {
			return nil, err
		}
		d.Metallics = append(d.Metallics, m)
	}
	return d, nil
}

func (d *MetallicDisplayProperties) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemMetallicDisplay.Space, elemMetallicDisplay.Local)
	writeAttrs(n).ID(attrMID, d.ID)
	for _, m := range d.Metallics {
		w := writeAttrs(n.AddElement(elemMetallic.Space, elemMetallic.Local))
		w.String(attrMName, m.Name)
		w.Number(attrMetallicness, m.Metallicness)
		w.Number(attrRoughness, m.Roughness)
	}
}

// MetallicTextureDisplayProperties drives metallic materials from textures.
type MetallicTextureDisplayProperties struct {
	ID                 ResourceID
	Name               string
	MetallicTextureID  ResourceID
	RoughnessTextureID ResourceID
	BaseColorFactor    *Color
	MetallicFactor     *float64
	RoughnessFactor    *float64
}

func (d *MetallicTextureDisplayProperties) ResourceID() ResourceID      { return d.ID }
func (d *MetallicTextureDisplayProperties) ElementName() Name           { return elemMetallicTexture }
func (d *MetallicTextureDisplayProperties) setResourceID(id ResourceID) { d.ID = id }

// EffectiveFactors applies the defaults: white, 1 and 1.
func (d *MetallicTextureDisplayProperties) EffectiveFactors() (baseColor Color, metallic, roughness float64) {
	baseColor, metallic, roughness = White, 1, 1
	if d.BaseColorFactor != nil {
		baseColor = *d.BaseColorFactor
	}
	if d.MetallicFactor != nil {
		metallic = *d.MetallicFactor
	}
	if d.RoughnessFactor != nil {
		roughness = *d.RoughnessFactor
	}
	return baseColor, metallic, roughness
}

func decodeMetallicTextureDisplayProperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	d := &MetallicTextureDisplayProperties{
		ID:                 r.ID(attrMID),
		Name:               r.String(attrMName),
		MetallicTextureID:  r.ID(attrMetallicTextureID),
		RoughnessTextureID: r.ID(attrRoughnessTextureID),
		BaseColorFactor:    r.OptColor(attrBaseColorFactor),
		MetallicFactor:     r.OptNumber(attrMetallicFactor),
		RoughnessFactor:    r.OptNumber(attrRoughnessFactor),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MetallicTextureDisplayProperties) encode(parent *xmltree.Node, _ encodeState) {
	w := writeAttrs(parent.AddElement(elemMetallicTexture.Space, elemMetallicTexture.Local))
	w.ID(attrMID, d.ID)
	w.String(attrMName, d.Name)
	w.ID(attrMetallicTextureID, d.MetallicTextureID)
	w.ID(attrRoughnessTextureID, d.RoughnessTextureID)
	w.OptColor(attrBaseColorFactor, d.BaseColorFactor)
	w.OptNumber(attrMetallicFactor, d.MetallicFactor)
	w.OptNumber(attrRoughnessFactor, d.RoughnessFactor)
}

// Specular is one m:pbspecular entry.
type Specular struct {
	Name          string
	SpecularColor *Color
	Glossiness    *float64
}

// DefaultSpecularColor is used when a specular entry omits its color.
var DefaultSpecularColor = RGB(0x38, 0x38, 0x38)

// EffectiveValues applies the defaults: #383838 and glossiness 0.
func (s Specular) EffectiveValues() (Color, float64) {
	c, g := DefaultSpecularColor, 0.0
	if s.SpecularColor != nil {
		c = *s.SpecularColor
	}
	if s.Glossiness != nil {
		g = *s.Glossiness
	}
	return c, g
}

// SpecularDisplayProperties describes specular-glossiness materials.
type SpecularDisplayProperties struct {
	ID        ResourceID
	Speculars []Specular
}

func (d *SpecularDisplayProperties) ResourceID() ResourceID      { return d.ID }
func (d *SpecularDisplayProperties) ElementName() Name           { return elemSpecularDisplay }
func (d *SpecularDisplayProperties) setResourceID(id ResourceID) { d.ID = id }

// AddSpecular appends an entry and returns its index.
func (d *SpecularDisplayProperties) AddSpecular(s Specular) ResourceIndex {
	d.Speculars = append(d.Speculars, s)
	return ResourceIndex(len(d.Speculars) - 1)
}

func decodeSpecularDisplayProperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	d := &SpecularDisplayProperties{ID: r.ID(attrMID)}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemSpecular) {
		sr := readAttrs(e)
		s := Specular{
			Name:          sr.String(attrMName),
			SpecularColor: sr.OptColor(attrSpecularColor),
			Glossiness:    sr.OptNumber(attrGlossiness),
		}
		if err := sr.Err(); err != nil {
			return nil, err
		}
		d.Speculars = append(d.Speculars, s)
	}
	return d, nil
}

func (d *SpecularDisplayProperties) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemSpecularDisplay.Space, elemSpecularDisplay.Local)
	writeAttrs(n).ID(attrMID, d.ID)
	for _, s := range d.Speculars {
		w := writeAttrs(n.AddElement(elemSpecular.Space, elemSpecular.Local))
		w.String(attrMName, s.Name)
		w.OptColor(attrSpecularColor, s.SpecularColor)
		w.OptNumber(attrGlossiness, s.Glossiness)
	}
}

// SpecularTextureDisplayProperties drives specular materials from textures.
type SpecularTextureDisplayProperties struct {
	ID                  ResourceID
	Name                string
	SpecularTextureID   ResourceID
	GlossinessTextureID ResourceID
	DiffuseFactor       *Color
	SpecularFactor      *Color
	GlossinessFactor    *float64
}

func (d *SpecularTextureDisplayProperties) ResourceID() ResourceID      { return d.ID }
func (d *SpecularTextureDisplayProperties) ElementName() Name           { return elemSpecularTexture }
func (d *SpecularTextureDisplayProperties) setResourceID(id ResourceID) { d.ID = id }

// EffectiveFactors applies the defaults: white, white and 1.
func (d *SpecularTextureDisplayProperties) EffectiveFactors() (diffuse, specular Color, glossiness float64) {
	diffuse, specular, glossiness = White, White, 1
	if d.DiffuseFactor != nil {
		diffuse = *d.DiffuseFactor
	}
	if d.SpecularFactor != nil {
		specular = *d.SpecularFactor
	}
	if d.GlossinessFactor != nil {
		glossiness = *d.GlossinessFactor
	}
	return diffuse, specular, glossiness
}

func decodeSpecularTextureDisplayProperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	d := &SpecularTextureDisplayProperties{
		ID:                  r.ID(attrMID),
		Name:                r.String(attrMName),
		SpecularTextureID:   r.ID(attrSpecularTextureID),
		GlossinessTextureID: r.ID(attrGlossinessTextureID),
		DiffuseFactor:       r.OptColor(attrDiffuseFactor),
		SpecularFactor:      r.OptColor(attrSpecularFactor),
		GlossinessFactor:    r.OptNumber(attrGlossinessFactor),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *SpecularTextureDisplayProperties) encode(parent *xmltree.Node, _ encodeState) {
	w := writeAttrs(parent.AddElement(elemSpecularTexture.Space, elemSpecularTexture.Local))
	w.ID(attrMID, d.ID)
	w.String(attrMName, d.Name)
	w.ID(attrSpecularTextureID, d.SpecularTextureID)
	w.ID(attrGlossinessTextureID, d.GlossinessTextureID)
	w.OptColor(attrDiffuseFactor, d.DiffuseFactor)
	w.OptColor(attrSpecularFactor, d.SpecularFactor)
	w.OptNumber(attrGlossinessFactor, d.GlossinessFactor)
}

// Translucent is one m:translucent entry.
type Translucent struct {
	Name              string
	Attenuation       Numbers
	RefractiveIndices Numbers
	Roughness         *float64
}

// TranslucentDisplayProperties describes glass-like materials.
type TranslucentDisplayProperties struct {
	ID           ResourceID
	Translucents []Translucent
}

func (d *TranslucentDisplayProperties) ResourceID() ResourceID      { return d.ID }
func (d *TranslucentDisplayProperties) ElementName() Name           { return elemTranslucentDisplay }
func (d *TranslucentDisplayProperties) setResourceID(id ResourceID) { d.ID = id }

func decodeTranslucentDisplayProperties(n *xmltree.Node) (Resource, error) {
	r := readAttrs(n)
	d := &TranslucentDisplayProperties{ID: r.ID(attrMID)}
	if err := r.Err(); err != nil {
		return nil, err
	}
	for _, e := range children(n, elemTranslucent) {
		tr := readAttrs(e)
		t := Translucent{
			Name:              tr.String(attrMName),
			Attenuation:       required(tr, attrAttenuation, ParseNumbers),
			RefractiveIndices: required(tr, attrRefractiveIndex, ParseNumbers),
			Roughness:         tr.OptNumber(attrRoughness),
		}
		if err := tr.Err(); err != nil {
			return nil, err
		}
		d.Translucents = append(d.Translucents, t)
	}
	return d, nil
}

func (d *TranslucentDisplayProperties) encode(parent *xmltree.Node, _ encodeState) {
	n := parent.AddElement(elemTranslucentDisplay.Space, elemTranslucentDisplay.Local)
	writeAttrs(n).ID(attrMID, d.ID)
	for _, t := range d.Translucents {
		w := writeAttrs(n.AddElement(elemTranslucent.Space, elemTranslucent.Local))
		w.String(attrMName, t.Name)
		w.String(attrAttenuation, t.Attenuation.String())
		w.String(attrRefractiveIndex, t.RefractiveIndices.String())
		w.OptNumber(attrRoughness, t.Roughness)
	}
}
