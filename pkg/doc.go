// Package pkg provides the libraries behind html2deck, which rebuilds HTML
// slide decks as editable PowerPoint files.
//
// # Overview
//
// A deck is loaded in headless Chromium, its laid-out element tree is
// captured as a scene graph, and each slide of that graph is synthesized
// into native shapes:
//
//	HTML file
//	    ↓
//	[browser] render the page (go-rod)
//	    ↓
//	[extract] walk slides, read geometry and computed style, capture rasters
//	    ↓
//	[scene] pruned node tree per slide
//	    ↓
//	[synth] backgrounds, text boxes and pictures
//	    ↓
//	[pptx] write the package
//
// [pipeline] orchestrates one file or a batch of files across workers, each
// with its own rendering session, and consults [cache] so that an unchanged
// deck is never rendered twice.
//
// # Quick Start
//
//	session, err := browser.Launch(ctx, browser.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.ConvertFile(ctx, pipeline.Surface(session),
//	    "slides/file_1.html", "out/file_1.pptx", pipeline.Options{})
//
// Batch conversion starts sessions on demand:
//
//	batch, err := runner.ConvertAll(ctx, inputs, opts, pipeline.BrowserSurfaces(bopts))
//
// # Main Packages
//
// [style] parses CSS values: colors, gradients, radii, shadows, weights.
//
// [extract] defines the rendering collaborator ([extract.Surface]) and turns
// a rendered document into a [scene.Deck]. [browser] implements the
// collaborator with Chromium; extract/extracttest implements it in memory.
//
// [synth] holds the layout heuristics and emits shapes in paint order.
//
// [pptx] writes the presentation package.
//
// [inspect] reads the HTML statically to outline slides and find the local
// assets that feed cache keys.
//
// [server] serves conversions over HTTP.
//
// [config], [errors], [observability] and [buildinfo] are shared
// infrastructure.
//
// [browser]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/browser
// [extract]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/extract
// [extract.Surface]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/extract#Surface
// [scene]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/scene
// [scene.Deck]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/scene#Deck
// [style]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/style
// [synth]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/synth
// [pptx]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/pptx
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/cache
// [inspect]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/inspect
// [server]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/html2deck/pkg/buildinfo
package pkg
