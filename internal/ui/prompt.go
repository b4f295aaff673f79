package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on out and reads one line of answer from in.
// Every read returns io.EOF once input is exhausted.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a new prompter
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Out is where prompts and listings are written.
func (p *Prompter) Out() io.Writer {
	return p.out
}

// Printf writes to the prompter's output.
func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a line to the prompter's output.
func (p *Prompter) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// Ask prints prompt and returns the trimmed answer. A final line without a
// newline is still returned; io.EOF is returned only when nothing was read.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			fmt.Fprintln(p.out)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	marker := "[y/N]"
	if def {
		marker = "[Y/n]"
	}

	answer, err := p.Ask(fmt.Sprintf("%s %s: ", question, marker))
	if err != nil {
		return false, err
	}
	return ParseYesNo(answer, def), nil
}

// ParseYesNo interprets y/yes and n/no, case-insensitively. Anything else
// selects def.
func ParseYesNo(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}
