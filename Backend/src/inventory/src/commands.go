package main

import (
	"context"
	"strings"
)

type Command string

const (
	CmdAdd    Command = "a"
	CmdUpdate Command = "u"
	CmdDelete Command = "d"
	CmdSearch Command = "s"
	CmdView   Command = "v"
	CmdExit   Command = "e"
)

func ParseCommand(s string) (Command, bool) {
	switch c := Command(strings.ToLower(strings.TrimSpace(s))); c {
	case CmdAdd, CmdUpdate, CmdDelete, CmdSearch, CmdView, CmdExit:
		return c, true
	}
	return "", false
}

// Search modes accepted after CmdSearch.
const (
	searchByID   = "id"
	searchByText = "o"
	searchByQty  = "q"
)

type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultInvalid
	ResultNotFound
	ResultDuplicate
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultInvalid:
		return "invalid"
	case ResultNotFound:
		return "not_found"
	case ResultDuplicate:
		return "duplicate"
	}
	return "unknown"
}

// Result is what a handler hands back to the shell. Table is set when Books
// should be printed as rows instead of as a single record.
type Result struct {
	Kind    ResultKind
	Message string
	Books   []Book
	Table   bool
	Header  bool
}

const (
	msgNotFound      = "ID does not exist."
	msgDuplicate     = "Book with the same Title and Author already exist in the database."
	msgInvalidNumber = "Not a valid number entered."
	msgUnrecognised  = "Input not recognised."
	msgBadMenu       = "Input not recognised. Please Try again"
	msgGoodbye       = "Goodbye!!!"
)

func invalid(msg string) Result { return Result{Kind: ResultInvalid, Message: msg} }

type handler func(ctx context.Context, sh *Shell) (Result, error)

func (sh *Shell) handlers() map[Command]handler {
	return map[Command]handler{
		CmdAdd:    handleAdd,
		CmdUpdate: handleUpdate,
		CmdDelete: handleDelete,
		CmdSearch: handleSearch,
		CmdView:   handleView,
	}
}

func handleAdd(ctx context.Context, sh *Shell) (Result, error) {
	title, err := sh.ask("Title of the new book: ")
	if err != nil {
		return Result{}, err
	}
	author, err := sh.ask("Author of the new book: ")
	if err != nil {
		return Result{}, err
	}
	qty, ok, err := sh.askInt("Quantity of the new book: ")
	if err != nil || !ok {
		return invalid(msgInvalidNumber), err
	}
	return sh.svc.Add(ctx, title, author, qty)
}

func handleUpdate(ctx context.Context, sh *Shell) (Result, error) {
	id, ok, err := sh.askInt("Please enter the ID of the book you would like to update: ")
	if err != nil || !ok {
		return invalid(msgInvalidNumber), err
	}
	found, err := sh.svc.Find(ctx, id)
	if err != nil || found.Kind != ResultOK {
		return found, err
	}
	sh.printBook(found.Books[0])

	raw, err := sh.ask("Would you like to update 'Title', 'Author' or 'Qty'?")
	if err != nil {
		return Result{}, err
	}
	field, ok := ParseField(raw)
	if !ok {
		return invalid(msgUnrecognised), nil
	}

	var value string
	switch field {
	case FieldTitle:
		value, err = sh.ask("Update title to: ")
	case FieldAuthor:
		value, err = sh.ask("Update author to: ")
	case FieldQty:
		var n int64
		n, ok, err = sh.askInt("Update quantity to: ")
		if err == nil && !ok {
			return invalid(msgInvalidNumber), nil
		}
		value = formatInt(n)
	}
	if err != nil {
		return Result{}, err
	}
	return sh.svc.Update(ctx, id, field, value)
}

func handleDelete(ctx context.Context, sh *Shell) (Result, error) {
	id, ok, err := sh.askInt("Please enter the ID of the book you would like to delete: ")
	if err != nil || !ok {
		return invalid(msgInvalidNumber), err
	}
	found, err := sh.svc.Find(ctx, id)
	if err != nil || found.Kind != ResultOK {
		return found, err
	}
	sh.printBook(found.Books[0])
	return sh.svc.Delete(ctx, id)
}

func handleSearch(ctx context.Context, sh *Shell) (Result, error) {
	mode, err := sh.ask("Would you like to search by:\n    id - book id\n    o - title or author\n    q - query quantity\n    ")
	if err != nil {
		return Result{}, err
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case searchByText:
		term, err := sh.ask("Please enter book title or author to search the database: ")
		if err != nil {
			return Result{}, err
		}
		res, err := sh.svc.SearchText(ctx, term)
		res.Table = true
		return res, err
	case searchByID:
		id, ok, err := sh.askInt("Please enter the book id to search: ")
		if err != nil || !ok {
			return invalid(msgInvalidNumber), err
		}
		return sh.svc.Find(ctx, id)
	case searchByQty:
		low, ok, err := sh.askInt("Search books with Qty starting FROM : ")
		if err != nil || !ok {
			return invalid(msgInvalidNumber), err
		}
		high, ok, err := sh.askInt("Search books with Qty UP TO : ")
		if err != nil || !ok {
			return invalid(msgInvalidNumber), err
		}
		res, err := sh.svc.SearchQuantity(ctx, low, high)
		res.Table = true
		return res, err
	}
	return invalid(msgUnrecognised), nil
}

func handleView(ctx context.Context, sh *Shell) (Result, error) {
	res, err := sh.svc.List(ctx)
	res.Table, res.Header = true, true
	return res, err
}
