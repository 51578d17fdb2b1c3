package threemf

import (
	"sort"

	"github.com/Faultbox/threemf/pkg/xmltree"
)

// Name is a namespace-qualified element or attribute identity. For
// attributes, an empty Space means the core namespace.
type Name = xmltree.Name

// Namespace URIs.
const (
	NamespaceCore         = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"
	NamespaceMaterials    = "http://schemas.microsoft.com/3dmanufacturing/material/2015/02"
	NamespaceProduction   = "http://schemas.microsoft.com/3dmanufacturing/production/2015/06"
	NamespaceAlternatives = "http://schemas.microsoft.com/3dmanufacturing/production/alternatives/2021/04"
	NamespaceTriangleSets = "http://schemas.microsoft.com/3dmanufacturing/trianglesets/2021/07"
	NamespaceMirroring    = "http://schemas.microsoft.com/3dmanufacturing/mirroring/2021/07"
	NamespaceBeamLattice  = "http://schemas.microsoft.com/3dmanufacturing/beamlattice/2017/02"
	NamespaceSlice        = "http://schemas.microsoft.com/3dmanufacturing/slice/2015/07"
	NamespaceVolumetric   = "http://schemas.3mf.io/3dmanufacturing/volumetric/2022/01"
	NamespaceImplicit     = "http://schemas.3mf.io/3dmanufacturing/implicit/2023/12"
	NamespaceBoolean      = "http://schemas.3mf.io/3dmanufacturing/booleanoperations/2023/07"
	NamespaceDisplacement = "http://schemas.3mf.io/3dmanufacturing/displacement/2023/10"
	NamespaceXML          = xmltree.XMLNamespace
)

// Extension describes a 3MF extension namespace.
type Extension struct {
	Name   string
	Prefix string
	URI    string
}

// Known extensions, keyed by their standard prefix.
var (
	ExtMaterials    = Extension{"Materials and Properties", "m", NamespaceMaterials}
	ExtProduction   = Extension{"Production", "p", NamespaceProduction}
	ExtAlternatives = Extension{"Production Alternatives", "pa", NamespaceAlternatives}
	ExtTriangleSets = Extension{"Triangle Sets", "t", NamespaceTriangleSets}
	ExtMirroring    = Extension{"Mirroring", "mm", NamespaceMirroring}
	ExtBeamLattice  = Extension{"Beam Lattice", "b", NamespaceBeamLattice}
	ExtSlice        = Extension{"Slice", "s", NamespaceSlice}
	ExtVolumetric   = Extension{"Volumetric", "v", NamespaceVolumetric}
	ExtImplicit     = Extension{"Implicit", "i", NamespaceImplicit}
	ExtBoolean      = Extension{"Boolean Operations", "bo", NamespaceBoolean}
	ExtDisplacement = Extension{"Displacement", "d", NamespaceDisplacement}
)

var knownExtensions = []Extension{
	ExtMaterials, ExtProduction, ExtAlternatives, ExtTriangleSets, ExtMirroring,
	ExtBeamLattice, ExtSlice, ExtVolumetric, ExtImplicit, ExtBoolean, ExtDisplacement,
}

// SupportedExtensions are the extensions this package decodes.
var SupportedExtensions = []Extension{ExtMaterials, ExtTriangleSets, ExtProduction}

// KnownExtensions returns every extension with a standard prefix.
func KnownExtensions() []Extension {
	return append([]Extension(nil), knownExtensions...)
}

// ExtensionByURI looks up a known extension.
func ExtensionByURI(uri string) (Extension, bool) {
	for _, e := range knownExtensions {
		if e.URI == uri {
			return e, true
		}
	}
	return Extension{}, false
}

// StandardPrefix returns the conventional prefix for a namespace URI, or ""
// for the core namespace and unknown URIs.
func StandardPrefix(uri string) string {
	if uri == NamespaceXML {
		return "xml"
	}
	if e, ok := ExtensionByURI(uri); ok {
		return e.Prefix
	}
	return ""
}

// SupportedExtension reports whether this package decodes the extension
// with the given namespace URI.
func SupportedExtension(uri string) bool {
	for _, e := range SupportedExtensions {
		if e.URI == uri {
			return true
		}
	}
	return false
}

func core(local string) Name      { return Name{Space: NamespaceCore, Local: local} }
func materials(local string) Name { return Name{Space: NamespaceMaterials, Local: local} }
func production(local string) Name {
	return Name{Space: NamespaceProduction, Local: local}
}
func alternatives(local string) Name {
	return Name{Space: NamespaceAlternatives, Local: local}
}
func triangleSets(local string) Name {
	return Name{Space: NamespaceTriangleSets, Local: local}
}

// Core elements.
var (
	elemModel         = core("model")
	elemMetadata      = core("metadata")
	elemMetadataGroup = core("metadatagroup")
	elemResources     = core("resources")
	elemBuild         = core("build")
	elemItem          = core("item")
	elemObject        = core("object")
	elemMesh          = core("mesh")
	elemVertices      = core("vertices")
	elemVertex        = core("vertex")
	elemTriangles     = core("triangles")
	elemTriangle      = core("triangle")
	elemComponents    = core("components")
	elemComponent     = core("component")
	elemBaseMaterials = core("basematerials")
	elemBase          = core("base")
)

// Core attributes.
var (
	attrID                    = core("id")
	attrName                  = core("name")
	attrType                  = core("type")
	attrThumbnail             = core("thumbnail")
	attrPartNumber            = core("partnumber")
	attrDisplayColor          = core("displaycolor")
	attrUnit                  = core("unit")
	attrLanguage              = core("language")
	attrRequiredExtensions    = core("requiredextensions")
	attrRecommendedExtensions = core("recommendedextensions")
	attrPreserve              = core("preserve")
	attrTransform             = core("transform")
	attrObjectID              = core("objectid")
	attrV1                    = core("v1")
	attrV2                    = core("v2")
	attrV3                    = core("v3")
	attrX                     = core("x")
	attrY                     = core("y")
	attrZ                     = core("z")
	attrPID                   = core("pid")
	attrPIndex                = core("pindex")
	attrP1                    = core("p1")
	attrP2                    = core("p2")
	attrP3                    = core("p3")
	attrPrintable             = core("printable")
	attrXMLLang               = Name{Space: NamespaceXML, Local: "lang"}
)

// Materials elements and attributes.
var (
	elemColorGroup         = materials("colorgroup")
	elemColor              = materials("color")
	elemCompositeMaterials = materials("compositematerials")
	elemComposite          = materials("composite")
	elemMultiproperties    = materials("multiproperties")
	elemMulti              = materials("multi")
	elemTexture2D          = materials("texture2d")
	elemTexture2DGroup     = materials("texture2dgroup")
	elemTex2Coord          = materials("tex2coord")
	elemMetallicDisplay    = materials("pbmetallicdisplayproperties")
	elemMetallic           = materials("pbmetallic")
	elemMetallicTexture    = materials("pbmetallictexturedisplayproperties")
	elemSpecularDisplay    = materials("pbspeculardisplayproperties")
	elemSpecular           = materials("pbspecular")
	elemSpecularTexture    = materials("pbspeculartexturedisplayproperties")
	elemTranslucentDisplay = materials("translucentdisplayproperties")
	elemTranslucent        = materials("translucent")

	attrMID                 = materials("id")
	attrMName               = materials("name")
	attrDisplayPropertiesID = materials("displaypropertiesid")
	attrValues              = materials("values")
	attrPath                = materials("path")
	attrContentType         = materials("contenttype")
	attrColor               = materials("color")
	attrMatID               = materials("matid")
	attrMatIndices          = materials("matindices")
	attrPIDs                = materials("pids")
	attrPIndices            = materials("pindices")
	attrBlendMethods        = materials("blendmethods")
	attrFilter              = materials("filter")
	attrTexID               = materials("texid")
	attrU                   = materials("u")
	attrV                   = materials("v")
	attrTileStyleU          = materials("tilestyleu")
	attrTileStyleV          = materials("tilestylev")
	attrMetallicness        = materials("metallicness")
	attrRoughness           = materials("roughness")
	attrMetallicTextureID   = materials("metallictextureid")
	attrRoughnessTextureID  = materials("roughnesstextureid")
	attrBaseColorFactor     = materials("basecolorfactor")
	attrMetallicFactor      = materials("metallicfactor")
	attrRoughnessFactor     = materials("roughnessfactor")
	attrSpecularColor       = materials("specularcolor")
	attrGlossiness          = materials("glossiness")
	attrSpecularTextureID   = materials("speculartextureid")
	attrGlossinessTextureID = materials("glossinesstextureid")
	attrDiffuseFactor       = materials("diffusefactor")
	attrSpecularFactor      = materials("specularfactor")
	attrGlossinessFactor    = materials("glossinessfactor")
	attrAttenuation         = materials("attenuation")
	attrRefractiveIndex     = materials("refractiveindex")
)

// Production, alternatives and triangle sets.
var (
	attrUUID     = production("UUID")
	attrProdPath = production("path")

	elemAlternatives    = alternatives("alternatives")
	elemAlternative     = alternatives("alternative")
	attrAltObjectID     = alternatives("objectid")
	attrAltPath         = alternatives("path")
	attrModelResolution = alternatives("modelresolution")

	elemTriangleSets = triangleSets("trianglesets")
	elemTriangleSet  = triangleSets("triangleset")
	elemRef          = triangleSets("ref")
	elemRefRange     = triangleSets("refrange")
	attrTSName       = triangleSets("name")
	attrIdentifier   = triangleSets("identifier")
	attrIndex        = triangleSets("index")
	attrStartIndex   = triangleSets("startindex")
	attrEndIndex     = triangleSets("endindex")
)

func sortedPrefixes(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
