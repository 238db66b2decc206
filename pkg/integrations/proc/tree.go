// Package proc resolves process groups and delivers stop/continue signals
// via procfs and kill(2).
package proc

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tree is a /proc-backed process tree. Refresh walks /proc once and builds
// a parent-to-children index, so descendants are resolved from a single
// consistent snapshot instead of a live traversal that can race with
// processes forking or exiting.
type Tree struct {
	children map[int][]int
	comm     map[int]string
}

func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) Refresh() error {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return errors.Wrap(err, "read /proc")
	}

	children := make(map[int][]int)
	comm := make(map[int]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		ppid, name, err := readStat(pid)
		if err != nil {
			// Exited between ReadDir and the stat read.
			continue
		}
		children[ppid] = append(children[ppid], pid)
		comm[pid] = name
	}

	t.children = children
	t.comm = comm
	return nil
}

// Descendants returns pid plus every descendant of pid in the current
// snapshot, sorted. An empty slice means the pid is gone.
func (t *Tree) Descendants(pid int) []int {
	if _, ok := t.comm[pid]; !ok {
		return nil
	}

	var out []int
	seen := make(map[int]bool)
	stack := []int{pid}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		stack = append(stack, t.children[cur]...)
	}

	sort.Ints(out)
	return out
}

// Comm returns the command name of pid from the current snapshot, or ""
// if the pid is gone.
func (t *Tree) Comm(pid int) string {
	return t.comm[pid]
}

func readStat(pid int) (int, string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, "", err
	}
	return parseStat(string(data))
}

// parseStat extracts ppid and comm from a /proc/<pid>/stat line. The comm
// field is wrapped in parentheses and may itself contain spaces and
// parentheses, so parsing anchors on the last ')'.
func parseStat(raw string) (int, string, error) {
	open := strings.IndexByte(raw, '(')
	closing := strings.LastIndexByte(raw, ')')
	if open < 0 || closing < open {
		return 0, "", errors.Errorf("malformed stat line: %q", raw)
	}
	comm := raw[open+1 : closing]

	// After ')': state, ppid, pgrp, ...
	fields := strings.Fields(raw[closing+1:])
	if len(fields) < 2 {
		return 0, "", errors.Errorf("truncated stat line: %q", raw)
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", errors.Wrap(err, "parse ppid")
	}
	return ppid, comm, nil
}
