package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/threemf/pkg/opc"
)

func (a *app) partsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parts <file.3mf>",
		Short: "List package parts with size and content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			types, err := r.ContentTypes()
			if err != nil {
				a.log.Warn("no usable content types", zap.Error(err))
				types = &opc.ContentTypes{}
			}

			t := newTable("PART", "SIZE", "CONTENT TYPE")
			for _, part := range r.Parts() {
				size, _ := r.Size(part)
				t.add(part, size, types.Lookup(part))
			}
			t.render(cmd.OutOrStdout())
			return nil
		},
	}
}

func (a *app) extractCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "extract <file.3mf> [part|pattern]...",
		Short: "Extract parts into a directory",
		Long: `Extract parts into a directory, keeping their package paths.

Patterns use shell glob syntax matched against the full part name.
Without any part names every part is extracted.

Examples:
  tmftool extract model.3mf /3D/3dmodel.model
  tmftool extract model.3mf "/3D/Textures/*" -o textures`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			parts, err := selectParts(r, args[1:])
			if err != nil {
				return err
			}
			for _, part := range parts {
				data, err := r.ReadPart(part)
				if err != nil {
					return err
				}
				dest := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(part, "/")))
				if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
					return err
				}
				if err := os.WriteFile(dest, data, 0644); err != nil {
					return err
				}
				a.log.Debug("extracted part", zap.String("part", part), zap.String("dest", dest))
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Extracted %d parts to %s", len(parts), outDir)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory")
	return cmd
}

// selectParts resolves names and glob patterns against the package.
func selectParts(r *opc.Reader, patterns []string) ([]string, error) {
	all := r.Parts()
	if len(patterns) == 0 {
		return all, nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[") {
			if !r.Contains(p) {
				return nil, fmt.Errorf("%w: %s", opc.ErrPartNotFound, opc.NormalizePath(p))
			}
			p = opc.NormalizePath(p)
			for _, part := range all {
				if strings.EqualFold(part, p) && !seen[part] {
					seen[part] = true
					out = append(out, part)
				}
			}
			continue
		}

		pattern := strings.ToLower(opc.NormalizePath(p))
		matched := false
		for _, part := range all {
			ok, err := filepath.Match(pattern, strings.ToLower(part))
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			if ok {
				matched = true
				if !seen[part] {
					seen[part] = true
					out = append(out, part)
				}
			}
		}
		if !matched {
			return nil, fmt.Errorf("no parts match %q", p)
		}
	}
	return out, nil
}
