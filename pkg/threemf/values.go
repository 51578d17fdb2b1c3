package threemf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/threemf/pkg/math"
)

// ResourceID identifies a resource within one model part.
type ResourceID int

// ResourceIndex is a zero-based index into a property group or vertex list.
type ResourceIndex int

// ResourceIndices is a space-separated list of indices.
type ResourceIndices []ResourceIndex

// Numbers is a space-separated list of decimal numbers.
type Numbers []float64

func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValueError{Kind: "integer", Raw: raw}
	}
	return v, nil
}

func parseResourceID(raw string) (ResourceID, error) {
	v, err := parseInt(raw)
	if err != nil || v < 0 {
		return 0, &ValueError{Kind: "resource id", Raw: raw}
	}
	return ResourceID(v), nil
}

func parseResourceIndex(raw string) (ResourceIndex, error) {
	v, err := parseInt(raw)
	if err != nil || v < 0 {
		return 0, &ValueError{Kind: "resource index", Raw: raw}
	}
	return ResourceIndex(v), nil
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ValueError{Kind: "number", Raw: raw}
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseResourceIndices parses a whitespace-separated index list.
func ParseResourceIndices(raw string) (ResourceIndices, error) {
	fields := strings.Fields(raw)
	out := make(ResourceIndices, 0, len(fields))
	for _, f := range fields {
		v, err := parseResourceIndex(f)
		if err != nil {
			return nil, &ValueError{Kind: "index list", Raw: raw}
		}
		out = append(out, v)
	}
	return out, nil
}

func (r ResourceIndices) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

// ParseResourceIDs parses a whitespace-separated resource id list.
func ParseResourceIDs(raw string) ([]ResourceID, error) {
	fields := strings.Fields(raw)
	out := make([]ResourceID, 0, len(fields))
	for _, f := range fields {
		v, err := parseResourceID(f)
		if err != nil {
			return nil, &ValueError{Kind: "id list", Raw: raw}
		}
		out = append(out, v)
	}
	return out, nil
}

func formatResourceIDs(ids []ResourceID) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

// ParseNumbers parses a whitespace-separated number list.
func ParseNumbers(raw string) (Numbers, error) {
	fields := strings.Fields(raw)
	out := make(Numbers, 0, len(fields))
	for _, f := range fields {
		v, err := parseNumber(f)
		if err != nil {
			return nil, &ValueError{Kind: "number list", Raw: raw}
		}
		out = append(out, v)
	}
	return out, nil
}

func (n Numbers) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, " ")
}

func parseBool(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, &ValueError{Kind: "boolean", Raw: raw}
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &ValueError{Kind: "uuid", Raw: raw}
	}
	return id, nil
}

// Color is an sRGB color with alpha.
type Color struct {
	R, G, B, A uint8
}

// White is opaque white.
var White = Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xFF}
}

// ParseColor parses #RRGGBB or #RRGGBBAA, case-insensitive.
func ParseColor(raw string) (Color, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "#") || (len(s) != 7 && len(s) != 9) {
		return Color{}, &ValueError{Kind: "color", Raw: raw}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, &ValueError{Kind: "color", Raw: raw}
	}
	c := Color{A: 0xFF}
	if len(s) == 9 {
		c.A = uint8(v)
		v >>= 8
	}
	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return c, nil
}

// String formats the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Matrix3D is a 3MF affine transform: twelve numbers in row order
// m00 m01 m02 m10 m11 m12 m20 m21 m22 m30 m31 m32. Points are row vectors,
// so p' = p * M with an implicit last column of 0 0 0 1.
type Matrix3D [12]float64

// Identity3D is the identity transform.
var Identity3D = Matrix3D{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}

// ParseMatrix3D parses exactly twelve whitespace-separated numbers.
func ParseMatrix3D(raw string) (Matrix3D, error) {
	fields := strings.Fields(raw)
	if len(fields) != 12 {
		return Matrix3D{}, &ValueError{Kind: "transform", Raw: raw}
	}
	var m Matrix3D
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Matrix3D{}, &ValueError{Kind: "transform", Raw: raw}
		}
		m[i] = v
	}
	return m, nil
}

func (m Matrix3D) String() string {
	parts := make([]string, 12)
	for i, v := range m {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, " ")
}

// Translation returns a pure translation transform.
func Translation(x, y, z float64) Matrix3D {
	m := Identity3D
	m[9], m[10], m[11] = x, y, z
	return m
}

// Mul returns the transform that applies m first, then b.
func (m Matrix3D) Mul(b Matrix3D) Matrix3D {
	var out Matrix3D
	for row := 0; row < 4; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[row*3+k] * b[k*3+col]
			}
			if row == 3 {
				sum += b[9+col]
			}
			out[row*3+col] = sum
		}
	}
	return out
}

// Apply transforms a point.
func (m Matrix3D) Apply(x, y, z float64) (float64, float64, float64) {
	return x*m[0] + y*m[3] + z*m[6] + m[9],
		x*m[1] + y*m[4] + z*m[7] + m[10],
		x*m[2] + y*m[5] + z*m[8] + m[11]
}

// Mat4 converts to a column-major render matrix.
func (m Matrix3D) Mat4() math.Mat4 {
	return math.FromAffineRows(m)
}
