package synth

import (
	"github.com/matzehuels/html2deck/pkg/style"
)

// BackgroundKind says how a slide background is filled.
type BackgroundKind int

const (
	// BackgroundDefault leaves the slide on the master's white background.
	BackgroundDefault BackgroundKind = iota
	BackgroundSolid
	BackgroundGradient
)

// Background is a resolved slide fill. Colors are opaque.
type Background struct {
	Kind  BackgroundKind
	Color style.Color // solid color, or first stop
	End   style.Color // last stop
	Angle float64     // output angle, degrees counter-clockwise from left-to-right

	// DroppedStops counts gradient stops between the first and the last
	// that a two-stop fill cannot show.
	DroppedStops int
}

// ResolveBackground interprets a slide's raw background style.
//
// A linear gradient with at least two usable stops becomes a two-stop
// gradient from its first to its last stop. A single usable stop becomes a
// solid fill. Otherwise the rgba() or rgb() color in the value is used
// when it is not fully transparent. Anything else keeps the default.
func ResolveBackground(raw string) Background {
	if g := style.ParseLinearGradient(raw); g != nil {
		if len(g.Stops) == 1 {
			return Background{Kind: BackgroundSolid, Color: g.Stops[0].Flatten()}
		}
		last := len(g.Stops) - 1
		return Background{
			Kind:         BackgroundGradient,
			Color:        g.Stops[0].Flatten(),
			End:          g.Stops[last].Flatten(),
			Angle:        style.TargetAngle(g.Angle),
			DroppedStops: len(g.Stops) - 2,
		}
	}

	if c := solidColor(raw); !c.IsTransparent() {
		return Background{Kind: BackgroundSolid, Color: c.Flatten()}
	}
	return Background{Kind: BackgroundDefault}
}

// solidColor finds the color in a plain color value or a computed
// background shorthand such as "rgb(1, 2, 3) none repeat scroll 0% 0%".
// The shorthand's position percentages must not be read as channels.
func solidColor(raw string) style.Color {
	for _, fn := range []string{"rgba", "rgb"} {
		if call, ok := style.FunctionCall(raw, fn); ok {
			return style.ParseColor(call)
		}
	}
	return style.ParseColor(raw)
}
