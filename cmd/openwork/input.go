package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// lineReader wraps readline with a plain stdin fallback for
// non-terminal environments (pipes, CI).
type lineReader struct {
	rl       *readline.Instance
	fallback *bufio.Reader
}

func openLineReader(historyPath string) *lineReader {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			historyPath = ""
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		return &lineReader{fallback: bufio.NewReader(os.Stdin)}
	}
	return &lineReader{rl: rl}
}

func (r *lineReader) ReadLine(prompt string) (string, error) {
	if r.rl != nil {
		r.rl.SetPrompt(prompt)
		return r.rl.Readline()
	}
	fmt.Print(prompt)
	line, err := r.fallback.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *lineReader) Close() error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// interrupted reports whether a read ended with ctrl+c or EOF, either of
// which ends the plain-mode loop.
func interrupted(err error) bool {
	return err == readline.ErrInterrupt || err == io.EOF
}
