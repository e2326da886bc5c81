// expr_check.go - Batch expression self-test ("<expected> <expr>" per line)

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExprCheckReport summarises one self-test run.
type ExprCheckReport struct {
	Pass     int
	Fail     int
	Failures []string
}

// RunExprCheck evaluates every "<expected> <expr>" line from r. Blank lines
// and lines starting with '#' are skipped. Only malformed input or a read
// error returns an error; wrong results are counted as failures.
func RunExprCheck(r io.Reader, ev ExprEvaluator) (ExprCheckReport, error) {
	var rep ExprCheckReport
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wantStr, expr, ok := strings.Cut(line, " ")
		if !ok {
			return rep, fmt.Errorf("line %d: missing expression", lineNo)
		}
		want, err := strconv.ParseUint(wantStr, 10, 32)
		if err != nil {
			return rep, fmt.Errorf("line %d: bad expected value %q: %w", lineNo, wantStr, err)
		}
		got, err := ev.Evaluate(expr)
		switch {
		case err != nil:
			rep.Fail++
			rep.Failures = append(rep.Failures, fmt.Sprintf("line %d: %s: %v", lineNo, expr, err))
		case uint64(got) != want:
			rep.Fail++
			rep.Failures = append(rep.Failures, fmt.Sprintf("line %d: %s = %d, want %d", lineNo, expr, got, want))
		default:
			rep.Pass++
		}
	}
	return rep, sc.Err()
}
