package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra/doc"
	"github.com/yoanbernabeu/counttype/cli"
)

func main() {
	outputDir := flag.String("out", "./docs/commands", "Directory receiving the generated markdown")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	rootCmd := cli.GetRootCmd()
	rootCmd.DisableAutoGenTag = true

	// Front matter with a readable title per command page
	filePrepender := func(filename string) string {
		name := filepath.Base(filename)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		name = strings.ReplaceAll(name, "_", " ")

		title := name
		if title == "counttype" {
			title = "counttype (root)"
		}

		return "---\ntitle: " + title + "\ndescription: CLI reference for " + name + "\n---\n\n"
	}

	linkHandler := func(name string) string {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		return "/counttype/commands/" + strings.ToLower(base) + "/"
	}

	if err := doc.GenMarkdownTreeCustom(rootCmd, *outputDir, filePrepender, linkHandler); err != nil {
		log.Fatalf("Failed to generate documentation: %v", err)
	}

	log.Printf("Documentation generated successfully in %s", *outputDir)
}
