package commands

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/moves-management/moves-upload/errs"
	"github.com/moves-management/moves-upload/secrets"
)

// PASSWORD_ENV is the environment variable that supplies the application password for unattended runs.
const PASSWORD_ENV = "MOVES_UPLOAD_PASSWORD"

// checkPassword compares the operator's password with the 'app_password' secret. The password is taken from
// the environment if set, otherwise it is prompted for on the terminal.
func checkPassword(ctx context.Context, store secrets.Store) error {
	expected, err := secrets.Require(ctx, store, secrets.AppPassword)
	if err != nil {
		return errs.ConfigError("password", "%v", err)
	}

	password, ok := os.LookupEnv(PASSWORD_ENV)
	if !ok {
		if password, err = readPassword(int(os.Stdin.Fd()), stdin, "   Password: "); err != nil {
			return errs.AuthError("password", err)
		}
	}

	if !verify(password, expected) {
		return errs.AuthError("password", fmt.Errorf("incorrect password"))
	}

	return nil
}

func verify(password, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(password)), []byte(expected)) == 1
}

// readPassword reads a line from the terminal with echo disabled. If fd is not a terminal the line is read
// as is.
func readPassword(fd int, in io.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	defer fmt.Println()

	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err == nil {
		noecho := *termios
		noecho.Lflag &^= unix.ECHO
		noecho.Lflag |= unix.ICANON | unix.ISIG
		noecho.Iflag |= unix.ICRNL

		if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &noecho); err != nil {
			return "", err
		}

		defer unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
	}

	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	var b strings.Builder
	buffer := make([]byte, 1)

	for {
		n, err := in.Read(buffer)
		if n > 0 {
			if buffer[0] == '\n' {
				break
			}

			b.WriteByte(buffer[0])
		}

		if err == io.EOF && b.Len() > 0 {
			break
		} else if err != nil {
			return "", err
		}
	}

	return strings.TrimSuffix(b.String(), "\r"), nil
}
