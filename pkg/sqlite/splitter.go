package sqlite

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StatementReader splits a SQL dump into semicolon terminated statements.
//
// It works line by line: blank lines and lines starting with "--" or "#" are
// dropped, and a line starting with "/*" skips everything up to and including
// the next line containing "*/". Comment markers in the middle of a line are
// not recognized. Inside a line, semicolons only terminate a statement when
// they are outside of single and double quoted strings; a character following
// an unescaped backslash never changes the quoting state.
//
// A StatementReader is forward-only and cannot be restarted.
type StatementReader struct {
	br *bufio.Reader

	singleQuotes int
	doubleQuotes int
	inComment    bool
	escaped      bool
	buffer       strings.Builder

	// statements completed on the current line, not handed out yet
	pending []string
	eof     bool
}

func NewStatementReader(r io.Reader) *StatementReader {
	return &StatementReader{
		br: bufio.NewReader(r),
	}
}

// ReadStatement returns the next trimmed statement. It returns io.EOF once
// the input is exhausted.
func (s *StatementReader) ReadStatement() (string, error) {
	for len(s.pending) == 0 {
		if s.eof {
			return "", io.EOF
		}

		line, err := s.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read line: %w", err)
		}
		if errors.Is(err, io.EOF) {
			s.eof = true
		}

		s.scanLine(line)

		if s.eof {
			// a dump without a trailing semicolon still yields its last statement
			if rest := strings.TrimSpace(s.buffer.String()); rest != "" {
				s.pending = append(s.pending, rest)
			}
			s.buffer.Reset()
		}
	}

	stmt := s.pending[0]
	s.pending = s.pending[1:]
	return stmt, nil
}

func (s *StatementReader) scanLine(raw string) {
	line := strings.TrimSpace(raw)

	if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "#") {
		return
	}

	if !s.inComment && strings.HasPrefix(line, "/*") {
		s.inComment = true
	}
	if s.inComment {
		if strings.Contains(line, "*/") {
			s.inComment = false
		}
		return
	}

	// lines of a statement spanning several lines are joined with a newline
	if s.buffer.Len() > 0 {
		s.buffer.WriteByte('\n')
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if s.escaped {
			s.buffer.WriteByte(ch)
			s.escaped = false
			continue
		}

		switch {
		case ch == '\\':
			s.escaped = true
		case ch == '\'' && s.doubleQuotes == 0:
			s.singleQuotes = 1 - s.singleQuotes
		case ch == '"' && s.singleQuotes == 0:
			s.doubleQuotes = 1 - s.doubleQuotes
		}

		if ch == ';' && s.singleQuotes == 0 && s.doubleQuotes == 0 {
			if stmt := strings.TrimSpace(s.buffer.String()); stmt != "" {
				s.pending = append(s.pending, stmt)
			}
			s.buffer.Reset()
			continue
		}

		s.buffer.WriteByte(ch)
	}

	// an escape never carries over a line break
	s.escaped = false
}

// SplitStatements reads all statements of r into memory. Imports stream
// through ReadStatement instead.
func SplitStatements(r io.Reader) ([]string, error) {
	sr := NewStatementReader(r)
	var statements []string
	for {
		stmt, err := sr.ReadStatement()
		if errors.Is(err, io.EOF) {
			return statements, nil
		}
		if err != nil {
			return statements, err
		}
		statements = append(statements, stmt)
	}
}
