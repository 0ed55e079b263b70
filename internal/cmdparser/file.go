package cmdparser

import (
	"bufio"
	"io"
	"strings"
)

// ParseFile reads one command per line from r, skipping blank lines and
// lines whose first non-whitespace character is '#'. A parse failure is
// wrapped in a FileParseError carrying the 1-based line number.
func ParseFile(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			return nil, &FileParseError{Line: lineNo, Err: err}
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}
