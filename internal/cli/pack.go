package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/binpack3d/packview/pkg/cache"
	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/packing"
)

// packCommand creates the pack command, which sends a request file to the
// packing service and saves the resulting document.
func (c *CLI) packCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "pack [request.json]",
		Short: "Call the packing service and save the result document",
		Long: `Call the packing service and save the result document.

The request file describes the container and the items to pack. The service
response is converted into a viewer document that the render, view, and serve
commands consume. Responses are cached by request content; use --refresh to
force a new service call.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd.Context(), args[0], output, refresh, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output document path (default: request path with .result.json)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

func (c *CLI) runPack(ctx context.Context, input, output string, refresh, noCache bool) error {
	if err := errors.ValidatePath(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read request %s", input)
	}
	var req packing.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request %s", input)
	}

	backend := c.newCache(ctx, noCache)
	defer backend.Close()

	client, err := packing.NewClient(c.Config.Packing,
		packing.WithCache(backend, cache.NewDefaultKeyer()),
		packing.WithLogger(c.Logger),
	)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Packing %d item(s)...", len(req.Items)))
	spinner.Start()

	doc, err := client.Pack(ctx, req, refresh)
	if err != nil {
		spinner.StopWithError("Packing failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Packed %d of %d item(s)", len(doc.Items), len(doc.Items)+len(doc.Unpacked)))

	if output == "" {
		output = strings.TrimSuffix(input, ".json") + ".result.json"
	}
	if err := document.WriteFile(output, doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save result")
	}
	printFile(output)
	printStats(document.ComputeStats(doc), false)
	printNextStep("View it", fmt.Sprintf("packview view %s", output))
	return nil
}
