// Package report renders the yearly incident series produced by the
// aggregate package.
//
// This package contains writers for different output formats:
//   - TableWriter: terminal table with a proportional bar per year
//   - MarkdownWriter: Markdown document with a mermaid line chart
//   - JSONWriter: structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
