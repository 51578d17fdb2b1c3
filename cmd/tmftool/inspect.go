package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/threemf/pkg/opc"
	"github.com/Faultbox/threemf/pkg/threemf"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.3mf>",
		Short: "Show package and root model information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			rootPath, _ := r.RootModelPath()
			writeInfo(cmd.OutOrStdout(), args[0], rootPath, r, m)
			return nil
		},
	}
}

func writeInfo(w io.Writer, name, rootPath string, r *opc.Reader, m *threemf.Model) {
	printTitle(w, name)
	printField(w, "Root model", rootPath)
	printField(w, "Parts", len(r.Parts()))
	printField(w, "Unit", m.EffectiveUnit())
	if lang := m.XMLLang; lang != "" {
		printField(w, "Language", lang)
	}

	required := make([]string, len(m.RequiredExtensions))
	for i, uri := range m.RequiredExtensions {
		required[i] = extensionLabel(uri)
		if !threemf.SupportedExtension(uri) {
			required[i] += warningStyle.Render(" (unsupported)")
		}
	}
	if len(required) > 0 {
		printField(w, "Requires", strings.Join(required, ", "))
	}
	if len(m.RecommendedExtensions) > 0 {
		recommended := make([]string, len(m.RecommendedExtensions))
		for i, uri := range m.RecommendedExtensions {
			recommended[i] = extensionLabel(uri)
		}
		printField(w, "Recommends", strings.Join(recommended, ", "))
	}
	printField(w, "Build items", len(m.Build.Items))

	counts := make(map[string]int)
	for _, res := range m.Resources.Resources {
		counts[res.ElementName().Local]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintln(w)
	printTitle(w, "Resources")
	for _, k := range kinds {
		printField(w, k, counts[k])
	}

	if len(m.Metadata) > 0 {
		fmt.Fprintln(w)
		printTitle(w, "Metadata")
		for _, md := range m.Metadata {
			printField(w, md.Name, md.Value)
		}
	}
}

func (a *app) resourcesCmd() *cobra.Command {
	var part string
	cmd := &cobra.Command{
		Use:   "resources <file.3mf>",
		Short: "List the resources of a model part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			if part != "" {
				if m, err = r.ModelAt(part, a.decodeOptions(part)); err != nil {
					return err
				}
			}

			t := newTable("ID", "KIND", "DETAIL")
			for _, res := range m.Resources.Resources {
				t.add(res.ResourceID(), res.ElementName().Local, describe(res))
			}
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&part, "part", "", "Model part to list instead of the root model")
	return cmd
}

func describe(res threemf.Resource) string {
	switch r := res.(type) {
	case *threemf.Object:
		kind := r.EffectiveType().String()
		var detail string
		if r.Mesh != nil {
			detail = fmt.Sprintf("%d vertices, %d triangles", len(r.Mesh.Vertices), len(r.Mesh.Triangles))
			if n := len(r.Mesh.TriangleSets); n > 0 {
				detail += fmt.Sprintf(", %d triangle sets", n)
			}
		} else {
			detail = fmt.Sprintf("%d components", len(r.Components))
		}
		if r.Name != "" {
			return fmt.Sprintf("%q %s: %s", r.Name, kind, detail)
		}
		return kind + ": " + detail
	case *threemf.BaseMaterialGroup:
		names := make([]string, len(r.Materials))
		for i, mat := range r.Materials {
			names[i] = mat.Name
		}
		return strings.Join(names, ", ")
	case *threemf.ColorGroup:
		return fmt.Sprintf("%d colors", len(r.Colors))
	case *threemf.CompositeMaterialGroup:
		return fmt.Sprintf("%d composites of group %d", len(r.Composites), r.BaseMaterialGroupID)
	case *threemf.Multiproperties:
		return fmt.Sprintf("%d layers, %d combinations", len(r.GroupIDs), len(r.Elements))
	case *threemf.Texture2D:
		return fmt.Sprintf("%s (%s)", r.Path, r.ContentType)
	case *threemf.Texture2DGroup:
		return fmt.Sprintf("%d coordinates", len(r.Coordinates))
	case *threemf.MetallicDisplayProperties:
		return fmt.Sprintf("%d entries", len(r.Metallics))
	case *threemf.SpecularDisplayProperties:
		return fmt.Sprintf("%d entries", len(r.Speculars))
	case *threemf.TranslucentDisplayProperties:
		return fmt.Sprintf("%d entries", len(r.Translucents))
	default:
		return ""
	}
}
