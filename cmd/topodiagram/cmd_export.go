package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"topodiagram/internal/codec"
	"topodiagram/internal/domain"
	"topodiagram/internal/export"
	"topodiagram/internal/service"
)

// exportOptions are the flags of the export command
type exportOptions struct {
	formats     []string
	outDir      string
	rasterScale float64
	readOnly    bool
	force       bool
}

func newExportCmd() *cobra.Command {
	opts := exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <survey.{yaml,json}>",
		Short: "Render a survey to SVG, PNG, PDF, JSON or YAML",
		Long: `Instantiate the template for a survey file and write the diagram.

Image formats (svg, png, pdf) are named after the template title and the
customer. json and yaml write the placed devices and connections. With
--out - a single format is written to stdout; binary formats are refused
when stdout is a terminal unless --force is given.

  topodiagram export survey.yaml -f svg,pdf -o ./exports
  topodiagram export survey.json -f png -o - > diagram.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out") {
				opts.outDir = cfg.Export.Dir
			}
			if !cmd.Flags().Changed("raster-scale") {
				opts.rasterScale = cfg.Export.RasterScale
			}
			return runExport(cmd.Context(), args[0], opts, cmd.OutOrStdout(), stdoutIsTerminal)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"svg"}, "output formats: svg, png, pdf, json, yaml")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory, or - for stdout (default from config)")
	cmd.Flags().Float64Var(&opts.rasterScale, "raster-scale", export.DefaultRasterScale, "device scale of png and pdf output")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "omit the edit and delete affordances")
	cmd.Flags().BoolVar(&opts.force, "force", false, "write binary output to a terminal")
	return cmd
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func runExport(ctx context.Context, surveyPath string, opts exportOptions, stdout io.Writer, isTerminal func() bool) error {
	toStdout := opts.outDir == "-"
	if toStdout && len(opts.formats) != 1 {
		return fmt.Errorf("exactly one format can be written to stdout, got %d", len(opts.formats))
	}

	survey, err := codec.ReadConfigFile(surveyPath)
	if err != nil {
		return err
	}

	c := *cfg
	c.Viewer.Editable = !opts.readOnly && c.Viewer.Editable
	if opts.rasterScale > 0 {
		c.Export.RasterScale = opts.rasterScale
	}
	svc, closeStore, err := newService(&c, nil, false)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := svc.LoadConfig(*survey); err != nil {
		return err
	}

	for _, name := range opts.formats {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "json", "yaml", "yml":
			err = exportGraph(svc, name, survey.Kind, survey.CustomerName, opts.outDir, stdout)
		default:
			err = exportImage(ctx, svc, name, opts, stdout, isTerminal)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func exportImage(ctx context.Context, svc *service.DiagramService, name string, opts exportOptions, stdout io.Writer, isTerminal func() bool) error {
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	var sink export.Sink
	if opts.outDir == "-" {
		if format != export.FormatSVG && !opts.force && isTerminal() {
			return fmt.Errorf("refusing to write %s to a terminal; redirect stdout or use --force", format)
		}
		sink = export.WriterSink{W: stdout}
	} else {
		sink = export.DirSink{Dir: opts.outDir}
	}

	artifact, err := svc.ExportTo(ctx, format, sink)
	if err != nil {
		return err
	}
	if ds, ok := sink.(export.DirSink); ok && artifact != nil {
		fmt.Fprintln(os.Stderr, ds.Path(artifact))
	}
	return nil
}

// exportGraph writes the placed graph as {kind}_{customer}_graph.{format}
func exportGraph(svc *service.DiagramService, format string, kind domain.TopologyKind, customer, outDir string, stdout io.Writer) error {
	if outDir == "-" {
		return svc.EncodeGraph(format, stdout)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	name := strings.ReplaceAll(strings.ToLower(string(kind)+"_"+customer), " ", "_")
	path := filepath.Join(outDir, name+"_graph."+format)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := svc.EncodeGraph(format, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, path)
	return nil
}
