package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/threemf/internal/logger"
	"github.com/Faultbox/threemf/pkg/loader"
	"github.com/Faultbox/threemf/pkg/opc"
)

func (a *app) flattenCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "flatten <file.3mf>",
		Short: "Resolve the build across model parts",
		Long: `Resolve every build item through its component tree, following references
into other model parts, and print the resulting placements.

Each distinct mesh is listed once; placements refer to it by index.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			opts := []loader.Option{loader.WithLogger(logger.Named("loader"))}
			if n := a.cfg.Loader.Concurrency; n > 0 {
				opts = append(opts, loader.WithConcurrency(n))
			}
			lm, err := loader.New(r, opts...).Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.checkExtensions(lm.RootPath, lm.Root); err != nil {
				return err
			}
			writeFlattened(cmd.OutOrStdout(), lm, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print transform chains")
	return cmd
}

func writeFlattened(w io.Writer, lm *loader.LoadedModel, verbose bool) {
	stats := lm.Stats()
	printTitle(w, "Build")
	printField(w, "Items", stats.Items)
	printField(w, "Placements", stats.Placements)
	printField(w, "Meshes", stats.Meshes)
	printField(w, "Model parts", stats.Models)
	printField(w, "Triangles", fmt.Sprintf("%d (%d placed)", stats.Triangles, stats.PlacedTriangles))
	if box := lm.Bounds(); !box.Empty() {
		size, center := box.Size(), box.Center()
		printField(w, "Size", fmt.Sprintf("%g x %g x %g %s", size.X, size.Y, size.Z, lm.Root.EffectiveUnit()))
		printField(w, "Center", fmt.Sprintf("(%g, %g, %g)", center.X, center.Y, center.Z))
	}

	fmt.Fprintln(w)
	printTitle(w, "Meshes")
	meshes := newTable("#", "OBJECT", "PART", "VERTICES", "TRIANGLES")
	for i, m := range lm.Meshes {
		part := lm.RootPath
		if m.ModelIndex != loader.RootModelIndex {
			part = lm.ModelPaths[m.ModelIndex]
		}
		meshes.add(i, m.Ref.ID, part, len(m.Mesh.Vertices), len(m.Mesh.Triangles))
	}
	meshes.render(w)

	fmt.Fprintln(w)
	printTitle(w, "Placements")
	placements := newTable("ITEM", "MESH", "PATH", "PROPERTY")
	for i, item := range lm.Items {
		for _, c := range item.Components {
			prop := mutedStyle.Render("-")
			if ref, ok := c.Property(); ok {
				prop = fmt.Sprintf("%d:%d", ref.GroupID, ref.Index)
			}
			placements.add(i, c.MeshIndex, namePath(c.Names), prop)
		}
	}
	placements.render(w)

	if !verbose {
		return
	}
	for i, item := range lm.Items {
		for j, c := range item.Components {
			fmt.Fprintf(w, "\n  %s\n", headerStyle.Render(fmt.Sprintf("item %d / placement %d", i, j)))
			for _, t := range c.Transforms {
				fmt.Fprintf(w, "    %s\n", t)
			}
			fmt.Fprintf(w, "    %s %s\n", mutedStyle.Render("world"), c.WorldTransform())
		}
	}
}

func namePath(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = "?"
		}
		parts[i] = n
	}
	return strings.Join(parts, "/")
}
