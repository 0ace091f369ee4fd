// project_schema - 输出工程文件的 JSON Schema
//
// Usage:
//
//	go run ./cmd/project_schema [--out schema.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decker502/omagari/pkg/project"
)

var outFlag = flag.String("out", "", "Output file (default: stdout)")

func main() {
	flag.Parse()

	data, err := json.MarshalIndent(project.Schema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ failed to encode schema: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *outFlag == "" {
		os.Stdout.Write(data)
		return
	}

	if err := writeFile(*outFlag, data); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ schema written to %s\n", *outFlag)
}

// writeFile 写入同目录的临时文件后重命名为 path
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
