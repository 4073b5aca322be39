package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

type (
	// Prompter reads interactive answers from a reader/writer pair
	// (stdin/stdout in production, buffers in tests).
	Prompter struct {
		raw io.Reader
		in  *bufio.Reader
		out io.Writer
	}

	// Selection is the parsed answer to a SelectIndexes prompt.
	Selection struct {
		// All means the user accepted every item (y/yes/a/all)
		All bool

		// None means the user rejected every item (n/no)
		None bool

		// Indexes holds the 1-based items the user picked, when neither
		// All nor None is set
		Indexes []int
	}
)

// NewPrompter creates a prompter over the given reader and writer.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{raw: in, in: bufio.NewReader(in), out: out}
}

// Input prompts for a line of text, returning def when the answer is empty.
func (p *Prompter) Input(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}

	return line, nil
}

// Confirm prompts for a yes/no answer, returning def on an empty answer.
// Unrecognized answers re-prompt.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(p.out, "%s %s: ", label, hint)

		line, err := p.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// SelectIndexes prompts for y/n/a or a comma-separated list of 1-based
// indexes no greater than max. Unrecognized answers re-prompt.
func (p *Prompter) SelectIndexes(label string, max int) (Selection, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/n/1-%d]: ", label, max)

		line, err := p.readLine()
		if err != nil {
			return Selection{}, err
		}

		switch strings.ToLower(line) {
		case "y", "yes", "a", "all":
			return Selection{All: true}, nil
		case "n", "no":
			return Selection{None: true}, nil
		}

		if indexes := parseIndexes(line, max); indexes != nil {
			return Selection{Indexes: indexes}, nil
		}

		fmt.Fprintf(p.out, "Please answer y, n, or a comma-separated list of numbers between 1 and %d.\n", max)
	}
}

// ReadSecret prompts for a secret. When stdin is a terminal the input is
// read without echo; otherwise it falls back to a plain line read (pipes,
// tests).
func (p *Prompter) ReadSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", errors.Wrap(err, "failed to read secret")
		}
		return strings.TrimSpace(string(secret)), nil
	}

	return p.readLine()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "failed to read input")
	}

	return strings.TrimSpace(line), nil
}

// parseIndexes parses a comma-separated list of unique 1-based indexes.
// Returns nil when the input is not valid.
func parseIndexes(input string, max int) []int {
	var indexes []int
	seen := make(map[int]bool)

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx, err := strconv.Atoi(part)
		if err != nil || idx < 1 || idx > max {
			return nil
		}

		if !seen[idx] {
			seen[idx] = true
			indexes = append(indexes, idx)
		}
	}

	if len(indexes) == 0 {
		return nil
	}

	return indexes
}
