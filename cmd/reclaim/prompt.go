package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/reclaim/pkg/reclaim/exec"
	"github.com/jamesainslie/reclaim/pkg/reclaim/plan"
)

// stdinPrompter asks for confirmation on standard input. Answers:
// y(es), n(o), or a(bort)/q(uit).
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// Confirm implements exec.Prompter. EOF on stdin aborts the run.
func (p *stdinPrompter) Confirm(entry plan.Entry) (exec.Choice, error) {
	fmt.Fprintf(p.out, "Delete %s (%s)? [y/n/a] ",
		entry.Path, humanize.IBytes(uint64(entry.Size)))

	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return exec.ChoiceAbort, nil
		}
		return exec.ChoiceAbort, fmt.Errorf("reading confirmation: %w", err)
	}

	return exec.ParseChoice(strings.TrimSpace(line)), nil
}
