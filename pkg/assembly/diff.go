/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package assembly

import (
	"fmt"
	"strings"
)

const (
	opKeep = iota
	opDelete
	opAdd
)

type diffOp struct {
	kind int
	line string
}

// Diff compares the previous run's manifest stream against the current one
// and renders a line-oriented summary: hunk headers followed by -/+ lines,
// no surrounding context. Equal inputs render "(no changes)". A missing
// previous stream diffs as all additions.
func Diff(previous, current string) string {
	header := "--- previous\n+++ current\n"
	if previous == current {
		return header + "(no changes)\n"
	}

	ops := diffOps(splitLines(previous), splitLines(current))

	var out strings.Builder
	out.WriteString(header)

	aLine, bLine := 0, 0
	i := 0
	for i < len(ops) {
		if ops[i].kind == opKeep {
			aLine++
			bLine++
			i++
			continue
		}

		j := i
		aCount, bCount := 0, 0
		for j < len(ops) && ops[j].kind != opKeep {
			if ops[j].kind == opDelete {
				aCount++
			} else {
				bCount++
			}
			j++
		}

		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n",
			hunkStart(aLine, aCount), aCount,
			hunkStart(bLine, bCount), bCount)
		for k := i; k < j; k++ {
			if ops[k].kind == opDelete {
				out.WriteString("-" + ops[k].line + "\n")
			} else {
				out.WriteString("+" + ops[k].line + "\n")
			}
		}

		aLine += aCount
		bLine += bCount
		i = j
	}

	return out.String()
}

func hunkStart(line, count int) int {
	if count == 0 {
		return line
	}
	return line + 1
}

// diffOps computes an edit script via longest common subsequence.
func diffOps(a, b []string) []diffOp {
	n, m := len(a), len(b)

	// dp[i][j] holds the LCS length of a[i:] and b[j:].
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}

	ops := make([]diffOp, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{opKeep, a[i]})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			ops = append(ops, diffOp{opDelete, a[i]})
			i++
		default:
			ops = append(ops, diffOp{opAdd, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, diffOp{opDelete, a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, diffOp{opAdd, b[j]})
	}

	return ops
}

// splitLines splits on newlines, dropping the phantom empty line a trailing
// newline would otherwise produce.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
