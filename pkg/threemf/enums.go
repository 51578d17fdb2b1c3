package threemf

import "strings"

// Unit is the model unit of measurement.
type Unit int

const (
	UnitMillimeter Unit = iota // default
	UnitMicron
	UnitCentimeter
	UnitInch
	UnitFoot
	UnitMeter
)

var unitNames = map[Unit]string{
	UnitMicron:     "micron",
	UnitMillimeter: "millimeter",
	UnitCentimeter: "centimeter",
	UnitInch:       "inch",
	UnitFoot:       "foot",
	UnitMeter:      "meter",
}

func (u Unit) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return "millimeter"
}

// MillimetersPerUnit returns the length of one unit in millimeters.
func (u Unit) MillimetersPerUnit() float64 {
	switch u {
	case UnitMicron:
		return 0.001
	case UnitCentimeter:
		return 10
	case UnitInch:
		return 25.4
	case UnitFoot:
		return 304.8
	case UnitMeter:
		return 1000
	default:
		return 1
	}
}

// ParseUnit parses a unit name.
func ParseUnit(raw string) (Unit, error) {
	return parseEnum(raw, "unit", unitNames)
}

// ObjectType tags what an object is used for.
type ObjectType int

const (
	ObjectModel ObjectType = iota // default
	ObjectSolidSupport
	ObjectSupport
	ObjectSurface
	ObjectOther
)

var objectTypeNames = map[ObjectType]string{
	ObjectModel:        "model",
	ObjectSolidSupport: "solidsupport",
	ObjectSupport:      "support",
	ObjectSurface:      "surface",
	ObjectOther:        "other",
}

func (t ObjectType) String() string { return objectTypeNames[t] }

// ParseObjectType parses an object type.
func ParseObjectType(raw string) (ObjectType, error) {
	return parseEnum(raw, "object type", objectTypeNames)
}

// TileStyle controls texture coordinates outside [0,1].
type TileStyle int

const (
	TileWrap TileStyle = iota // default
	TileMirror
	TileClamp
	TileNone
)

var tileStyleNames = map[TileStyle]string{
	TileWrap:   "wrap",
	TileMirror: "mirror",
	TileClamp:  "clamp",
	TileNone:   "none",
}

func (t TileStyle) String() string { return tileStyleNames[t] }

// ParseTileStyle parses a tile style.
func ParseTileStyle(raw string) (TileStyle, error) {
	return parseEnum(raw, "tile style", tileStyleNames)
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterAuto Filter = iota // default
	FilterLinear
	FilterNearest
)

var filterNames = map[Filter]string{
	FilterAuto:    "auto",
	FilterLinear:  "linear",
	FilterNearest: "nearest",
}

func (f Filter) String() string { return filterNames[f] }

// ParseFilter parses a texture filter.
func ParseFilter(raw string) (Filter, error) {
	return parseEnum(raw, "filter", filterNames)
}

// TextureContentType is the image format of a texture part.
type TextureContentType int

const (
	TexturePNG TextureContentType = iota
	TextureJPEG
)

var textureContentTypeNames = map[TextureContentType]string{
	TexturePNG:  "image/png",
	TextureJPEG: "image/jpeg",
}

func (c TextureContentType) String() string { return textureContentTypeNames[c] }

// ParseTextureContentType parses a texture MIME type.
func ParseTextureContentType(raw string) (TextureContentType, error) {
	return parseEnum(raw, "texture content type", textureContentTypeNames)
}

// BlendMethod combines multiproperties layers.
type BlendMethod int

const (
	BlendMix BlendMethod = iota
	BlendMultiply
)

var blendMethodNames = map[BlendMethod]string{
	BlendMix:      "mix",
	BlendMultiply: "multiply",
}

func (b BlendMethod) String() string { return blendMethodNames[b] }

// ParseBlendMethod parses a blend method.
func ParseBlendMethod(raw string) (BlendMethod, error) {
	return parseEnum(raw, "blend method", blendMethodNames)
}

func parseBlendMethods(raw string) ([]BlendMethod, error) {
	fields := strings.Fields(raw)
	out := make([]BlendMethod, 0, len(fields))
	for _, f := range fields {
		b, err := ParseBlendMethod(f)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func formatBlendMethods(methods []BlendMethod) string {
	parts := make([]string, len(methods))
	for i, b := range methods {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}

// ModelResolution describes an alternative representation of an object.
type ModelResolution int

const (
	ResolutionFull ModelResolution = iota
	ResolutionLow
	ResolutionObfuscated
)

var modelResolutionNames = map[ModelResolution]string{
	ResolutionFull:       "fullres",
	ResolutionLow:        "lowres",
	ResolutionObfuscated: "obfuscated",
}

func (r ModelResolution) String() string { return modelResolutionNames[r] }

// ParseModelResolution parses a model resolution.
func ParseModelResolution(raw string) (ModelResolution, error) {
	return parseEnum(raw, "model resolution", modelResolutionNames)
}

func parseEnum[T comparable](raw, kind string, names map[T]string) (T, error) {
	s := strings.TrimSpace(raw)
	for v, name := range names {
		if name == s {
			return v, nil
		}
	}
	var zero T
	return zero, &ValueError{Kind: kind, Raw: raw}
}
