// tmftool inspects, flattens and rewrites 3MF packages.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/threemf/internal/config"
	"github.com/Faultbox/threemf/internal/logger"
	"github.com/Faultbox/threemf/pkg/opc"
	"github.com/Faultbox/threemf/pkg/threemf"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	flags config.Flags
	cfg   *config.Config
	log   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tmftool",
		Short: "Inspect and rewrite 3MF packages",
		Long: `tmftool reads 3MF packages, shows their parts and resources, resolves
builds that span several model parts, and writes normalized copies.

Settings come from ` + headerStyle.Render("tmftool.yaml") + ` or ` + headerStyle.Render("tmftool.toml") + ` in the working
directory or the user config directory, overridden by flags.

Examples:
  tmftool info part.3mf
  tmftool flatten assembly.3mf
  tmftool rewrite in.3mf out.3mf --compression 9`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	}
	a.flags.Register(root.PersistentFlags())

	root.AddCommand(
		a.infoCmd(),
		a.partsCmd(),
		a.resourcesCmd(),
		a.flattenCmd(),
		a.extractCmd(),
		a.rewriteCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(&a.flags)
	if err != nil {
		return err
	}

	opts := logger.Options{Level: cfg.Logging.Level, Console: cmd.ErrOrStderr()}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
		opts.File.MaxSizeMB = cfg.Logging.MaxSizeMB
		opts.File.MaxBackups = cfg.Logging.MaxBackups
	}
	if err := logger.Init(opts); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.Named("tmftool")
	return nil
}

func (a *app) decodeOptions(part string) threemf.DecodeOptions {
	return threemf.DecodeOptions{
		OnUnknown: func(parent, element threemf.Name) {
			a.log.Debug("skipping unknown element",
				zap.String("part", part),
				zap.String("parent", parent.Local),
				zap.String("element", element.Local),
			)
		},
	}
}

// open opens a package and decodes its root model.
func (a *app) open(path string) (*opc.Reader, *threemf.Model, error) {
	r, err := opc.Open(path)
	if err != nil {
		return nil, nil, err
	}
	rootPath, err := r.RootModelPath()
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	m, err := r.ModelAt(rootPath, a.decodeOptions(rootPath))
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	if err := a.checkExtensions(rootPath, m); err != nil {
		r.Close()
		return nil, nil, err
	}
	return r, m, nil
}

func (a *app) checkExtensions(part string, m *threemf.Model) error {
	unsupported := m.UnsupportedRequiredExtensions()
	if len(unsupported) == 0 {
		return nil
	}
	if a.cfg.Loader.StrictExtensions {
		return fmt.Errorf("%s requires unsupported extensions: %s", part, strings.Join(unsupported, ", "))
	}
	a.log.Warn("model requires unsupported extensions", zap.String("part", part), zap.Strings("extensions", unsupported))
	return nil
}

func extensionLabel(uri string) string {
	if ext, ok := threemf.ExtensionByURI(uri); ok {
		return ext.Name
	}
	return uri
}
