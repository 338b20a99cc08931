package util

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	truncatedStringEnd = " ..."
	maxLength          = 40
)

// PrintTable writes rows below a header row. Columns are as wide as their
// widest cell, cells longer than maxLength runes are truncated and nil
// cells are left blank.
func PrintTable(w io.Writer, columns []string, rows [][]any) {
	if len(columns) == 0 {
		return
	}

	columnSize, tableWidth := computeTableSize(columns, rows)
	border := fmt.Sprintf("+%s+\n", strings.Repeat("-", tableWidth-2))

	header := make([]any, 0, len(columns))
	for _, aColumn := range columns {
		header = append(header, aColumn)
	}

	fmt.Fprint(w, border)
	printTableRow(w, columnSize, header)
	// add horizontal border bellow the header row
	fmt.Fprint(w, border)
	for _, aRow := range rows {
		printTableRow(w, columnSize, aRow)
	}
	fmt.Fprint(w, border)
}

func printTableRow(w io.Writer, columnSize []int, values []any) {
	for i := range columnSize {
		var aValue any
		if i < len(values) {
			aValue = values[i]
		}
		// pad on the right rather than the left (left-justify the field)
		fmt.Fprintf(w, "| %-*s ", columnSize[i], cellString(aValue))
	}
	fmt.Fprintf(w, "|\n")
}

func cellString(aValue any) string {
	if aValue == nil {
		return ""
	}
	aStringValue := fmt.Sprint(aValue)
	r := []rune(aStringValue)
	if len(r) > maxLength {
		aStringValue = string(r[0:maxLength-len(truncatedStringEnd)]) + truncatedStringEnd
	}
	return aStringValue
}

func computeTableSize(columns []string, rows [][]any) ([]int, int) {
	// find max width for each column
	columnSize := make([]int, len(columns))
	for i, aColumn := range columns {
		columnSize[i] = utf8.RuneCountInString(aColumn)
	}
	for _, aRow := range rows {
		for i, aValue := range aRow {
			if i >= len(columnSize) {
				break
			}
			if n := utf8.RuneCountInString(cellString(aValue)); n > columnSize[i] {
				columnSize[i] = n
			}
		}
	}

	// left border is | followed by a space, right border is space followed by | (2+2=4)
	// then between each column we have space, |, space (3)
	tableWidth := 4 + (len(columnSize)-1)*3
	for _, columnWidth := range columnSize {
		tableWidth += columnWidth
	}

	return columnSize, tableWidth
}
