package main

import "strings"

type Book struct {
	ID     int64  `db:"id"`
	Title  string `db:"title"`
	Author string `db:"author"`
	Qty    int64  `db:"qty"`
}

// Field is a column that can be changed through Update.
type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldQty    Field = "qty"
)

func ParseField(s string) (Field, bool) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldTitle, FieldAuthor, FieldQty:
		return f, true
	}
	return "", false
}

// Ids asignados por la sesión empiezan después del último libro semilla.
const defaultIDFloor int64 = 3008

var seedBooks = []Book{
	{3001, "A Tale of Two Cities", "Charles Dickens", 30},
	{3002, "Harry Potter and the Philosopher's Stone", "J.K.Rowling", 40},
	{3003, "The Lion, the Witch and the Wardrobe", "C. S. Lewis", 25},
	{3004, "The Lord of the Rings", "J.R.R Tolkien", 37},
	{3005, "Alice in Wonderland", "Lewis Carroll", 12},
	{3006, "Harry Potter and the Prisoner of Azkaban", "J.K.Rowling", 30},
	{3007, "Harry Potter and the Half Blood Prince", "J.K.Rowling", 25},
}
