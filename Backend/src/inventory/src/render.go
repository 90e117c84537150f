package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
)

const rowFormat = "%-5d : %-45s : %-20s : %-3d\n"

func writeRows(w io.Writer, books []Book) {
	for _, b := range books {
		fmt.Fprintf(w, rowFormat, b.ID, b.Title, b.Author, b.Qty)
	}
}

// writeTable prints the full listing with a header and a stock summary.
func writeTable(w io.Writer, books []Book) {
	fmt.Fprintf(w, "\nbooks table:\n")
	fmt.Fprintf(w, "%-5s   %-45s   %-20s   %-3s\n", "ID", "Title", "Author", "Qty")
	writeRows(w, books)

	var copies int64
	for _, b := range books {
		copies += b.Qty
	}
	fmt.Fprintf(w, "\n%s books, %s copies in stock\n",
		humanize.Comma(int64(len(books))), humanize.Comma(copies))
}

func formatRecord(b Book) string {
	return fmt.Sprintf("(%d, %q, %q, %d)", b.ID, b.Title, b.Author, b.Qty)
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }
