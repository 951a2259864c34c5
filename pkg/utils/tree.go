package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// TreeNode is one line of a printed tree.
type TreeNode struct {
	Label    string
	Children []TreeNode
}

// WriteTree prints nodes below an already written root line, using box
// drawing connectors.
func WriteTree(w io.Writer, nodes []TreeNode) error {
	return writeTreeLevel(w, nodes, "")
}

func writeTreeLevel(w io.Writer, nodes []TreeNode, currentIndent string) error {
	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := entryPrefix
		if isLast {
			connector = lastEntryPrefix
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", currentIndent, connector, node.Label); err != nil {
			return err
		}

		if len(node.Children) > 0 {
			nextIndent := currentIndent + verticalLine
			if isLast {
				nextIndent = currentIndent + indentPrefix
			}
			if err := writeTreeLevel(w, node.Children, nextIndent); err != nil {
				return err
			}
		}
	}
	return nil
}

// DirTree reads dirPath recursively into tree nodes. Directories sort before
// files, then case-insensitively by name; directory labels end in "/".
func DirTree(dirPath string, log *logrus.Entry) ([]TreeNode, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		log.Warnf("Failed to read directory '%s': %v", dirPath, err)
		return nil, fmt.Errorf("%w: failed to read directory '%s': %w", ErrFilesystem, dirPath, err)
	}

	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	nodes := make([]TreeNode, 0, len(entries))
	for _, entry := range entries {
		node := TreeNode{Label: entry.Name()}
		if entry.IsDir() {
			node.Label += "/"
			node.Children, err = DirTree(filepath.Join(dirPath, entry.Name()), log)
			if err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GenerateAndSaveTreeStructure writes a text listing of targetDir to
// outputFilePath.
func GenerateAndSaveTreeStructure(targetDir, outputFilePath string, log *logrus.Entry) error {
	log.Debugf("Starting tree generation for target: %s", targetDir)
	if _, err := os.Stat(targetDir); err != nil {
		return fmt.Errorf("%w: target directory '%s': %w", ErrFilesystem, targetDir, err)
	}

	nodes, err := DirTree(targetDir, log)
	if err != nil {
		return fmt.Errorf("error generating tree structure for '%s': %w", targetDir, err)
	}

	file, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("%w: failed to create output file '%s': %w", ErrFilesystem, outputFilePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	header := fmt.Sprintf("Directory Structure for: %s", targetDir)
	if _, err := fmt.Fprintf(writer, "%s\n%s\n\n%s/\n", header, strings.Repeat("=", len(header)), filepath.Base(targetDir)); err != nil {
		return err
	}
	if err := WriteTree(writer, nodes); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	log.Debugf("Finished tree generation for: %s", targetDir)
	return nil
}
