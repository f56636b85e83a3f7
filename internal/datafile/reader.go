package datafile

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
)

// maxLineSize bounds a single data file line.
const maxLineSize = 1024 * 1024

// splitLine splits a data file line into fields.
// Lines are split exactly as they were joined: on every comma.
func splitLine(line string) []string {
	return strings.Split(strings.TrimSuffix(line, "\r"), separator)
}

// ReadColumn returns the values of the column labelled label, in file order.
// Rows with fewer fields than the column index are reported as an error
// naming the line.
func ReadColumn(path, label string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is the configured data file
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		return nil, fmt.Errorf("%w: %s is empty", ErrColumnNotFound, path)
	}

	index := slices.Index(splitLine(scanner.Text()), label)
	if index < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, label)
	}

	values := make([]string, 0)
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		fields := splitLine(text)
		if index >= len(fields) {
			return nil, fmt.Errorf("%s:%d: row has %d fields, column %q is field %d",
				path, line, len(fields), label, index+1)
		}
		values = append(values, fields[index])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	return values, nil
}
