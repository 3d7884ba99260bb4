package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ironsheep/morph-tools-mcp/internal/config"
	"github.com/ironsheep/morph-tools-mcp/internal/imaging"
	"github.com/ironsheep/morph-tools-mcp/internal/server"
)

var (
	configPath string
	cfg        config.Config

	labelMode         string
	labelConnectivity string
	labelThreshold    int
	labelPreview      string

	rootCmd = &cobra.Command{
		Use:   "morph-mcp",
		Short: "MCP server for mathematical morphology on images",
		Long: `morph-mcp exposes connected-component labeling, morphological
reconstruction and max-tree filtering as MCP tools over stdin/stdout.
Run without a subcommand to serve.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP requests on stdin/stdout",
		RunE:  runServe,
	}

	labelCmd = &cobra.Command{
		Use:   "label [image]",
		Short: "Count the connected components of an image",
		Args:  cobra.ExactArgs(1),
		RunE:  runLabel,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("morph-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to path",
		Args:  cobra.ExactArgs(1),
		// The target file need not exist yet.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(args[0]); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("YAML config file (default $%s)", config.EnvPath))

	labelCmd.Flags().StringVar(&labelMode, "mode", "binary", "binary, gray or color")
	labelCmd.Flags().StringVar(&labelConnectivity, "connectivity", "", "4 or 8 (default from config)")
	labelCmd.Flags().IntVar(&labelThreshold, "threshold", 0, "binary foreground level 0-255 (default from config)")
	labelCmd.Flags().StringVar(&labelPreview, "preview", "", "write a colored label image to this path")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(serveCmd, labelCmd, versionCmd, configCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(config.Resolve(configPath))
	if err != nil {
		return err
	}
	if os.Getenv("MORPH_MCP_LOG_LEVEL") == "debug" {
		cfg.LogLevel = "debug"
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Debug() {
		log.Printf("Morph MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
	server.Version = Version
	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runLabel(cmd *cobra.Command, args []string) error {
	adj, err := cfg.Adjacency()
	if err != nil {
		return err
	}
	if labelConnectivity != "" {
		if adj, err = config.ParsePlanar(labelConnectivity); err != nil {
			return err
		}
	}

	img, err := imaging.NewImageCache(cfg.MaxImagePixels).Load(args[0])
	if err != nil {
		return err
	}

	req := imaging.LabelRequest{
		Mode:             labelMode,
		DefaultThreshold: cfg.BinaryThreshold,
		Adjacency:        adj,
	}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = &labelThreshold
	}
	res, err := imaging.LabelImage(img, req)
	if err != nil {
		return err
	}

	sizes := res.Sizes()
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	fmt.Printf("%s: %d components (%s-connected)\n", args[0], res.Count, adj)
	for i, sz := range sizes {
		if i == 5 {
			break
		}
		fmt.Printf("  #%d: %d px\n", i+1, sz)
	}

	if labelPreview != "" {
		bg, err := cfg.Background()
		if err != nil {
			return err
		}
		preview, err := imaging.LabelPreview(res.Labels, res.Count, bg)
		if err != nil {
			return err
		}
		if err := imaging.Save(preview, labelPreview); err != nil {
			return err
		}
		fmt.Printf("preview written to %s\n", labelPreview)
	}
	return nil
}
