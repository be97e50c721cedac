package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func ReadFloatPairs(filename string) ([][]float64, error) {
	return ReadFloatColumns(filename, 2)
}

// ReadFloatColumns reads a whitespace separated numeric table with exactly
// columns values per line. Empty lines and lines starting with '#' are
// skipped, as is a non-numeric header before the first data line.
func ReadFloatColumns(filename string, columns int) ([][]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	return ParseFloatColumns(file, columns)
}

func ParseFloatColumns(r io.Reader, columns int) ([][]float64, error) {
	var result [][]float64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)

		// Skip empty lines and comments
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}

		if _, err := strconv.ParseFloat(parts[0], 64); err != nil && len(result) == 0 {
			continue
		}

		// Validate number of columns
		if len(parts) != columns {
			return nil, fmt.Errorf("invalid format in line: %q - expected %d numbers, got %d", line, columns, len(parts))
		}

		row := make([]float64, columns)
		for i := range parts {
			value, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing float in line %q: %w", line, err)
			}
			row[i] = value
		}

		result = append(result, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

func GetFilename(filePath string) string {
	// Get the base name (removes directory components)
	base := filepath.Base(filePath)

	// Remove the extension (everything after last dot)
	ext := filepath.Ext(base)

	// Trim the extension from base name
	nameWithoutExt := strings.TrimSuffix(base, ext)

	return nameWithoutExt
}

func OpenFile(makeDir bool, outputPath string, fileSuffix, modelName string) (*os.File, error) {
	if makeDir && fileSuffix != "" && fileSuffix != "." {
		if err := os.MkdirAll(filepath.Join(outputPath, fileSuffix), 0750); err != nil {
			return nil, err
		}
		return os.Create(filepath.Join(outputPath, fileSuffix, modelName+".txt"))
	} else {
		return os.Create(filepath.Join(outputPath, modelName+"_"+fileSuffix+".txt"))
	}
}
