package asciidoc

import "strings"

// TableKind tags the outcome tier of one table conversion.
type TableKind int

const (
	// TableUnchanged means the block text passed through unmodified.
	TableUnchanged TableKind = iota
	// TableBestEffort means cells were flattened and re-paired two at a time.
	TableBestEffort
	// TableParsed means row-by-row parsing succeeded.
	TableParsed
)

// TableResult is the tagged outcome of converting one `|===` block. The
// three-tier fallback (strict parse, best-effort pairing, passthrough) keeps
// the degrade-gracefully contract explicit: conversion never drops content.
type TableResult struct {
	Kind     TableKind
	Markdown string
}

const tableDelimiter = "|==="

// convertTables rewrites every `|===` delimited block in content. A block
// without a closing delimiter is left untouched.
func convertTables(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	for idx := 0; idx < len(lines); idx++ {
		if strings.TrimSpace(lines[idx]) != tableDelimiter {
			out = append(out, lines[idx])
			continue
		}

		closing := -1
		for scan := idx + 1; scan < len(lines); scan++ {
			if strings.TrimSpace(lines[scan]) == tableDelimiter {
				closing = scan
				break
			}
		}
		if closing < 0 {
			out = append(out, lines[idx])
			continue
		}

		result := convertTableBlock(lines[idx : closing+1])
		out = append(out, strings.Split(result.Markdown, "\n")...)
		idx = closing
	}

	return strings.Join(out, "\n")
}

// convertTableBlock converts one delimited block, delimiters included.
func convertTableBlock(block []string) TableResult {
	rows := parseTableRows(block[1 : len(block)-1])

	if len(rows) >= 2 && len(rows[0]) >= 2 {
		return TableResult{Kind: TableParsed, Markdown: renderTable(rows)}
	}

	if paired := pairCells(rows); len(paired) > 0 {
		return TableResult{Kind: TableBestEffort, Markdown: renderTable(paired)}
	}

	return TableResult{Kind: TableUnchanged, Markdown: strings.Join(block, "\n")}
}

// parseTableRows splits each `|`-prefixed line into trimmed cells.
func parseTableRows(lines []string) [][]string {
	var rows [][]string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}

		var cells []string
		for _, cell := range strings.Split(strings.TrimPrefix(trimmed, "|"), "|") {
			if value := strings.TrimSpace(cell); value != "" {
				cells = append(cells, value)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}

	return rows
}

// pairCells flattens all parsed cells and re-pairs them two at a time into a
// two-column layout. An odd trailing cell gets an empty partner.
func pairCells(rows [][]string) [][]string {
	var flat []string
	for _, row := range rows {
		flat = append(flat, row...)
	}
	if len(flat) < 2 {
		return nil
	}

	var paired [][]string
	for idx := 0; idx < len(flat); idx += 2 {
		if idx+1 < len(flat) {
			paired = append(paired, []string{flat[idx], flat[idx+1]})
		} else {
			paired = append(paired, []string{flat[idx], ""})
		}
	}

	return paired
}

// renderTable emits a Markdown table: first row as header, synthesized
// separator, every row padded to the widest row. Sizing to the widest row
// keeps cells from rows wider than the header from being cut off.
func renderTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	separator := make([]string, width)
	for idx := range separator {
		separator[idx] = "---"
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(rows[0], width))
	lines = append(lines, renderRow(separator, width))
	for _, row := range rows[1:] {
		lines = append(lines, renderRow(row, width))
	}

	return strings.Join(lines, "\n")
}

func renderRow(cells []string, width int) string {
	padded := make([]string, width)
	copy(padded, cells)

	return "| " + strings.Join(padded, " | ") + " |"
}
