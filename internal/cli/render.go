package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/binpack3d/packview/pkg/cache"
	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/render/sink"
	"github.com/binpack3d/packview/pkg/scene"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "svg", "json", "dot", "txt", "png"
	width    float64  // SVG viewport width in pixels
	title    string   // SVG title override
	static   bool     // omit the hover script from SVG output
	noStats  bool     // omit the stats footer from SVG output
	detailed bool     // show dimensions and positions in DOT output
	indent   bool     // indent JSON output
	noCache  bool     // disable artifact caching
}

// renderCommand creates the render command for generating file artifacts
// from a packing-result document.
//
// Default settings:
//   - format: from config (svg unless overridden)
//   - width: from config (800px)
//   - hover script and stats footer enabled
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Render a packing document to SVG, JSON, DOT, text, or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, c.Config.Render.Format)
			if opts.width == 0 {
				opts.width = c.Config.Render.Width
			}
			for _, f := range opts.formats {
				if err := errors.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, txt, png (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "SVG viewport width")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG title")
	cmd.Flags().BoolVar(&opts.static, "static", false, "omit the hover script from SVG output")
	cmd.Flags().BoolVar(&opts.noStats, "no-stats", false, "omit the stats footer from SVG output")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dimensions and positions (dot)")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "indent JSON output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, the configured default applies.
func parseFormats(s, fallback string) []string {
	if s == "" {
		return []string{fallback}
	}
	return strings.Split(s, ",")
}

// runRender loads the document, builds a scene generation from it, and
// renders every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read document %s", input)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return err
	}
	c.Logger.Info("Loaded document",
		"container", fmt.Sprintf("%gx%gx%g", doc.Container.Width, doc.Container.Height, doc.Container.Depth),
		"packed", len(doc.Items), "unpacked", len(doc.Unpacked))

	lifecycle := scene.NewLifecycle()
	defer lifecycle.DisposeAll()
	sync := scene.NewSynchronizer(lifecycle,
		scene.WithLogger(c.Logger),
		scene.WithCellSize(c.Config.Scene.CellSize),
		scene.WithItemsPerRow(c.Config.Scene.ItemsPerRow),
	)
	gen := sync.Sync(doc)
	if d := gen.Diagnostics; d.SkippedItems > 0 || d.ClampedItems > 0 {
		c.Logger.Warn("document has recoverable problems",
			"skipped", d.SkippedItems, "clamped", d.ClampedItems)
	}

	backend := c.newCache(ctx, opts.noCache)
	defer backend.Close()
	keyer := cache.NewDefaultKeyer()

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		artifact, hit, err := c.renderFormat(ctx, gen, format, opts, backend, keyer)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, artifact, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		printFile(path)
		printStats(gen.Stats, hit)
	}
	return nil
}

// renderFormat produces one artifact, consulting the artifact cache first.
// The reported bool is true when the artifact came from cache.
func (c *CLI) renderFormat(ctx context.Context, gen *scene.Generation, format string, opts *renderOpts, backend cache.Cache, keyer cache.Keyer) ([]byte, bool, error) {
	key := keyer.ArtifactKey(gen.Fingerprint, cache.ArtifactKeyOpts{
		Format:   format,
		Width:    opts.width,
		Detailed: opts.detailed,
	})
	if data, ok, _ := backend.Get(ctx, key); ok {
		return data, true, nil
	}

	p := newProgress(c.Logger)
	var (
		data []byte
		err  error
	)
	switch format {
	case "svg":
		data = sink.RenderSVG(gen, buildSVGOpts(opts)...)
	case "json":
		data, err = sink.RenderJSON(gen, buildJSONOpts(opts)...)
	case "dot":
		data = []byte(sink.ToDOT(gen, sink.DOTOptions{Detailed: opts.detailed}))
	case "png":
		data, err = sink.RenderDOTPNG(sink.ToDOT(gen, sink.DOTOptions{Detailed: opts.detailed}))
	case "txt":
		data = sink.RenderText(gen)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return nil, false, err
	}
	p.done(fmt.Sprintf("Rendered %s (%d bytes)", format, len(data)))

	if err := backend.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		c.Logger.Debug("artifact cache write failed", "error", err)
	}
	return data, false, nil
}

// buildSVGOpts constructs SVG rendering options from the command flags.
func buildSVGOpts(opts *renderOpts) []sink.SVGOption {
	result := []sink.SVGOption{sink.WithSVGWidth(opts.width)}
	if opts.title != "" {
		result = append(result, sink.WithSVGTitle(opts.title))
	}
	if opts.static {
		result = append(result, sink.WithoutSVGScript())
	}
	if opts.noStats {
		result = append(result, sink.WithoutSVGStats())
	}
	return result
}

// buildJSONOpts constructs JSON rendering options from the command flags.
func buildJSONOpts(opts *renderOpts) []sink.JSONOption {
	result := []sink.JSONOption{sink.WithJSONDecorations()}
	if opts.indent {
		result = append(result, sink.WithJSONIndent())
	}
	return result
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if errors.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
