// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

var demoAssets = []types.Asset{
	{
		Title:  "Pixel Art Platformer Pack",
		Author: "Demo Author",
		Link:   "https://example.com/pixel-pack",
		Cover:  "https://example.com/cover.png",
		Source: "itch",
	},
	{
		Title:  "3D Fantasy Models",
		Author: "Demo Studio",
		Link:   "https://example.com/3d-models",
		Cover:  "https://example.com/cover2.png",
		Source: "kenney",
	},
	{
		Title:  "RPG Tileset",
		Author: "Demo Games",
		Link:   "https://example.com/tileset",
		Cover:  "https://example.com/cover3.png",
		Source: "opengameart",
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show sample assets without touching the network",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, titleStyle.Render("Demo Assets (Sample Data)"))
		renderAssets(w, demoAssets)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
