//go:build unix

package decoder

import (
	"os"
	"syscall"
)

func pauseProcess(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

func resumeProcess(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}

func interruptProcess(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
