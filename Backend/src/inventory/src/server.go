package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

const menuPrompt = `
Please select one of the following Options below:

    a - Enter a new book
    u - Update an existing book
    d - Delete an existing book
    s - Search books
    v - View the database
    e - Exit

Option selected : `

// Shell is the interactive menu. It is the only component that writes to out.
type Shell struct {
	in     *bufio.Reader
	out    io.Writer
	svc    *Service
	closer io.Closer
}

func NewShell(in io.Reader, out io.Writer, svc *Service, closer io.Closer) *Shell {
	return &Shell{in: bufio.NewReader(in), out: out, svc: svc, closer: closer}
}

// errStoreClose marks a Run error raised while closing the store on exit. The
// session itself ended normally.
var errStoreClose = errors.New("close store")

// Run blocks until the user exits or input ends. A non-nil error means an
// unexpected storage failure, or errStoreClose.
func (sh *Shell) Run(ctx context.Context) error {
	handlers := sh.handlers()
	for {
		raw, err := sh.ask(menuPrompt)
		if errors.Is(err, io.EOF) {
			return sh.exit()
		}
		if err != nil {
			return err
		}

		cmd, ok := ParseCommand(raw)
		if !ok {
			fmt.Fprintf(sh.out, "%s\n\n", msgBadMenu)
			continue
		}
		if cmd == CmdExit {
			return sh.exit()
		}

		res, err := handlers[cmd](ctx, sh)
		if errors.Is(err, io.EOF) {
			return sh.exit()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		log.Debug().Str("cmd", string(cmd)).Stringer("result", res.Kind).Msg("command done")
		sh.render(res)
	}
}

func (sh *Shell) exit() error {
	var err error
	if sh.closer != nil {
		if cerr := sh.closer.Close(); cerr != nil {
			err = fmt.Errorf("%w: %w", errStoreClose, cerr)
		}
	}
	fmt.Fprintln(sh.out, msgGoodbye)
	return err
}

// ask prints prompt and returns the next line without its newline. Lines
// have no length limit; a last line without newline is still returned.
func (sh *Shell) ask(prompt string) (string, error) {
	fmt.Fprint(sh.out, prompt)
	line, err := sh.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askInt reports ok=false when the line is not an integer.
func (sh *Shell) askInt(prompt string) (int64, bool, error) {
	line, err := sh.ask(prompt)
	if err != nil {
		return 0, false, err
	}
	n, err := parseInt(line)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (sh *Shell) render(res Result) {
	if res.Message != "" {
		fmt.Fprintln(sh.out, res.Message)
	}
	if res.Kind != ResultOK {
		return
	}
	if res.Table {
		if res.Header {
			writeTable(sh.out, res.Books)
		} else {
			writeRows(sh.out, res.Books)
		}
		return
	}
	if res.Message == "" {
		for _, b := range res.Books {
			sh.printBook(b)
		}
	}
}

func (sh *Shell) printBook(b Book) {
	fmt.Fprintln(sh.out, formatRecord(b))
}
