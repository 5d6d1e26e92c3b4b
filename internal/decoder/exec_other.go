//go:build !unix

package decoder

import (
	"os"

	"github.com/cockroachdb/errors"
)

var errPauseUnsupported = errors.New("pause is not supported on this platform")

func pauseProcess(*os.Process) error {
	return errPauseUnsupported
}

func resumeProcess(*os.Process) error {
	return errPauseUnsupported
}

func interruptProcess(p *os.Process) error {
	return p.Kill()
}
