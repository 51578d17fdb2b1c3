package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/threemf/pkg/opc"
)

func (a *app) rewriteCmd() *cobra.Command {
	var thumbnail string
	cmd := &cobra.Command{
		Use:   "rewrite <in.3mf> <out.3mf>",
		Short: "Decode and re-encode every model part",
		Long: `Decode every model part and write it back in canonical form, copying all
other parts unchanged. Relationships are preserved; their ids are renumbered.

Examples:
  tmftool rewrite in.3mf out.3mf
  tmftool rewrite in.3mf out.3mf --thumbnail preview.png --compression 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var thumb []byte
			if thumbnail != "" {
				data, err := os.ReadFile(thumbnail)
				if err != nil {
					return err
				}
				thumb = data
			}

			r, err := opc.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := a.rewrite(r, out, thumb); err != nil {
				out.Close()
				os.Remove(args[1])
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+args[1]))
			return nil
		},
	}
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Image to attach as package thumbnail")
	return cmd
}

func (a *app) rewrite(r *opc.Reader, out io.Writer, thumbnail []byte) error {
	types, err := r.ContentTypes()
	if err != nil {
		return err
	}
	w := opc.NewWriter(out, opc.WithCompressionLevel(a.cfg.Writer.CompressionLevel))

	var relsParts []string
	for _, part := range r.Parts() {
		if part == opc.ContentTypesPart {
			continue
		}
		if _, ok := opc.SourceFor(part); ok {
			relsParts = append(relsParts, part)
			continue
		}

		data, err := r.ReadPart(part)
		if err != nil {
			return err
		}
		ct := types.Lookup(part)
		if ct == opc.ContentTypeModel {
			if data, err = a.canonicalModel(r, part); err != nil {
				return err
			}
		}
		if err := w.AddPart(part, data, ct, ""); err != nil {
			return err
		}
	}

	for _, relsPart := range relsParts {
		source, _ := opc.SourceFor(relsPart)
		rels, err := r.Relationships(source)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			if strings.EqualFold(rel.TargetMode, "External") {
				a.log.Warn("dropping external relationship", zap.String("source", source), zap.String("target", rel.Target))
				continue
			}
			w.AddRelationship(source, opc.ResolveTarget(source, rel.Target), rel.Type)
		}
	}

	if thumbnail != nil {
		name, err := w.AddThumbnail(thumbnail)
		if err != nil {
			return err
		}
		a.log.Info("attached thumbnail", zap.String("part", name))
	}
	return w.Close()
}

func (a *app) canonicalModel(r *opc.Reader, part string) ([]byte, error) {
	m, err := r.ModelAt(part, a.decodeOptions(part))
	if err != nil {
		return nil, err
	}
	if err := a.checkExtensions(part, m); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", part, err)
	}
	a.log.Debug("rewrote model part", zap.String("part", part), zap.Int("resources", m.Resources.Len()))
	return buf.Bytes(), nil
}
