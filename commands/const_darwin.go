package commands

import (
	"golang.org/x/sys/unix"
)

const (
	_etc = "/usr/local/etc/com.github.moves-upload"
	_var = "/usr/local/var/com.github.moves-upload"

	DEFAULT_CONFIG      = _etc + "/moves-upload.yaml"
	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)

const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)
