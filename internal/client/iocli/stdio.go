package iocli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type Stdio struct {
	reader *bufio.Reader
}

func NewStdio() IO {
	return &Stdio{}
}

// IsTerminal reports whether stdin is attached to a terminal,
// i.e. whether prompting the user makes sense.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (s *Stdio) Println(a ...any) {
	fmt.Println(a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	// один reader на весь процесс, иначе буферизованный ввод теряется между вызовами
	if s.reader == nil {
		s.reader = bufio.NewReader(os.Stdin)
	}
	input, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword reads a secret without echo.
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	fd := int(os.Stdin.Fd())
	pwBytes, err := term.ReadPassword(fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pwBytes)), nil
}
