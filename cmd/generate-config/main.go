package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/postbox/internal/config"
)

const header = `# postbox configuration example
# Copy this file to config.yaml (or point CONFIG_PATH at it) and customize as needed.
# S3 credentials are read from S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY, never from this file.
# store.compression applies to the whole stored document. Changing it while a document
# already exists makes every request fail until the document is rewritten with the new codec.

`

func main() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
