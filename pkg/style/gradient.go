package style

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultGradientAngle is the CSS angle used when a gradient names no direction
// (top to bottom).
const DefaultGradientAngle = 180.0

// Gradient is a parsed linear-gradient with its CSS angle and usable stops.
type Gradient struct {
	Angle float64 // CSS degrees, 0 = up, clockwise
	Stops []Color // at least one
}

// directionAngles maps CSS keyword directions to their angle equivalents.
var directionAngles = map[string]float64{
	"to top":          0,
	"to right":        90,
	"to bottom":       180,
	"to left":         270,
	"to top right":    45,
	"to right top":    45,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom left":  225,
	"to left bottom":  225,
	"to top left":     315,
	"to left top":     315,
}

var stopPositionRe = regexp.MustCompile(`(\s+-?[\d.]+%)+\s*$`)

// ParseLinearGradient extracts the first linear-gradient(...) call from s.
//
// The first argument is read as an angle when it ends in "deg" or as a
// keyword direction when it starts with "to ". Remaining arguments are color
// stops; trailing percentage positions are ignored and stops that parse to
// fully transparent black are dropped. Returns nil when s holds no gradient
// or no usable stop survives.
func ParseLinearGradient(s string) *Gradient {
	body, ok := FunctionArgs(s, "linear-gradient")
	if !ok {
		return nil
	}

	segments := SplitTopLevel(body, ',')
	angle := DefaultGradientAngle
	if len(segments) > 0 {
		first := strings.ToLower(strings.TrimSpace(segments[0]))
		switch {
		case strings.HasSuffix(first, "deg"):
			if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(first, "deg")), 64); err == nil {
				angle = v
			}
			segments = segments[1:]
		case strings.HasPrefix(first, "to "):
			if v, ok := directionAngles[strings.Join(strings.Fields(first), " ")]; ok {
				angle = v
			}
			segments = segments[1:]
		}
	}

	var stops []Color
	for _, seg := range segments {
		seg = stopPositionRe.ReplaceAllString(strings.TrimSpace(seg), "")
		c := ParseColor(seg)
		if c == Transparent {
			continue
		}
		stops = append(stops, c)
	}
	if len(stops) == 0 {
		return nil
	}
	return &Gradient{Angle: angle, Stops: stops}
}

// TargetAngle converts a CSS gradient angle (0 = up, clockwise) into the
// DrawingML convention (0 = right), normalized to [0, 360).
func TargetAngle(cssAngle float64) float64 {
	a := math.Mod(cssAngle+90, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// FunctionArgs returns the argument text of the first call to the named CSS
// function in s, using balanced parenthesis scanning. The match is
// case-insensitive and requires the name to be followed directly by "(".
func FunctionArgs(s, name string) (string, bool) {
	start, end, ok := findFunction(s, name)
	if !ok {
		return "", false
	}
	return s[start+len(name)+1 : end], true
}

// FunctionCall returns the complete text of the first call to the named CSS
// function in s, for example "rgb(1, 2, 3)".
func FunctionCall(s, name string) (string, bool) {
	start, end, ok := findFunction(s, name)
	if !ok {
		return "", false
	}
	return s[start : end+1], true
}

// findFunction locates name( ... ) and returns the index of the name and of
// the matching closing parenthesis.
func findFunction(s, name string) (int, int, bool) {
	lower := asciiLower(s)
	needle := asciiLower(name) + "("
	from := 0
	for {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			return 0, 0, false
		}
		i += from
		// Reject matches that are the tail of a longer identifier such as
		// "repeating-linear-gradient" or "rgba" when looking for "rgb".
		if i > 0 && isIdentByte(lower[i-1]) {
			from = i + len(needle)
			continue
		}
		depth := 0
		for j := i + len(needle) - 1; j < len(s); j++ {
			switch s[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i, j, true
				}
			}
		}
		return 0, 0, false
	}
}

// asciiLower lowercases ASCII letters only, so byte offsets stay aligned
// with the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// SplitTopLevel splits s on sep, ignoring separators nested inside parentheses.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}
