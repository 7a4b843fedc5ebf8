package process

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// terminateTree signals pid and all of its descendants. Package-manager
// scripts such as `npm run serve` fork the real server, so signalling only
// the direct child would leave it listening.
func terminateTree(pid int32) error {
	root, err := process.NewProcess(pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}

	tree := append([]*process.Process{root}, Descendants(root)...)

	// Deepest first, so no parent outlives its children long enough to
	// respawn them.
	var errs []error
	for i := len(tree) - 1; i >= 0; i-- {
		p := tree[i]
		if err := p.Terminate(); err != nil {
			if running, _ := p.IsRunning(); running {
				errs = append(errs, fmt.Errorf("failed to terminate process %d: %w", p.Pid, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Descendants walks the process table below p. A process that disappears
// mid-walk simply contributes no children.
func Descendants(p *process.Process) []*process.Process {
	children, err := p.Children()
	if err != nil {
		return nil
	}

	var all []*process.Process
	for _, c := range children {
		all = append(all, c)
		all = append(all, Descendants(c)...)
	}
	return all
}
