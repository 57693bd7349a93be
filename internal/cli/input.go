package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readLine returns the next trimmed line from sc, or io.EOF.
func readLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

// GetSecret prints prompt to w and reads one line without echo when fd is a
// terminal, otherwise from sc. The caller wipes the returned slice.
func GetSecret(sc *bufio.Scanner, fd int, prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}

	if fd >= 0 && isTerminal(fd) {
		secret, err := readPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return nil, err
		}
		return secret, nil
	}

	line, err := readLine(sc)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}
