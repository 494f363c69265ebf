package auth

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/context"
)

// Interactive returns a Prompt that prints the authorisation URL and accepts the authorisation code either
// from the redirect to the local listener at addr or typed in by the operator.
func Interactive(addr string, in io.Reader, out io.Writer) Prompt {
	return func(ctx context.Context, uri string, state string) (string, error) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		codes := make(chan string, 2)
		failed := make(chan error, 2)

		if addr != "" {
			if srv, err := listen(addr, state, codes); err != nil {
				fmt.Fprintf(out, "\n   Could not start local authorisation listener on %v (%v)\n", addr, err)
			} else {
				defer srv.Close()
			}
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "   Go to the following link in your browser and authorise access, then wait for the redirect")
		fmt.Fprintln(out, "   or paste the authorisation code (or the URL you were redirected to) below:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "   %v\n", uri)
		fmt.Fprintln(out)
		fmt.Fprint(out, "   Code: ")

		// The read cannot be interrupted, so if the code arrives through the listener first the goroutine stays
		// blocked until the next line is entered and then discards it.
		if in != nil {
			go func() {
				line, err := readLine(in)
				if code := ParseCode(line); code != "" {
					codes <- code
				} else if err != nil {
					failed <- fmt.Errorf("unable to read authorisation code (%w)", err)
				} else {
					failed <- fmt.Errorf("missing authorisation code")
				}
			}()
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case err := <-failed:
			return "", err

		case code := <-codes:
			fmt.Fprintln(out)
			return code, nil
		}
	}
}

// readLine reads up to and including the next newline one byte at a time, so that nothing after the line is
// taken from a reader shared with other prompts.
func readLine(in io.Reader) (string, error) {
	var b strings.Builder
	buffer := make([]byte, 1)

	for {
		n, err := in.Read(buffer)
		if n > 0 {
			b.WriteByte(buffer[0])
			if buffer[0] == '\n' {
				return b.String(), nil
			}
		}

		if err != nil {
			return b.String(), err
		}
	}
}

// ParseCode extracts the authorisation code from either a bare code or a redirect URL.
func ParseCode(s string) string {
	v := strings.TrimSpace(s)
	if strings.Contains(v, "code=") {
		if u, err := url.Parse(v); err == nil {
			if code := u.Query().Get("code"); code != "" {
				return code
			}
		}
	}

	return v
}

func listen(addr string, state string, codes chan<- string) (*http.Server, error) {
	socket, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		code := rq.FormValue("code")

		switch {
		case rq.FormValue("error") != "":
			http.Error(w, fmt.Sprintf("Authorisation declined (%v)", rq.FormValue("error")), http.StatusForbidden)

		case rq.FormValue("state") != state || code == "":
			http.Error(w, "Invalid authorisation response", http.StatusBadRequest)

		default:
			fmt.Fprintln(w, "Authorised - you can close this window and return to the application.")
			select {
			case codes <- code:
			default:
			}
		}
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(socket); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("authorisation listener error (%v)\n", err)
		}
	}()

	return srv, nil
}
