package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	okPrefix     = "OK:"
	lineEnd      = "\r\n"
	failResponse = "FAIL" + lineEnd

	// maxLine bounds a username or password line, terminator included.
	maxLine = 1024
)

var errLineTooLong = errors.New("line too long")

// serve owns conn for its lifetime and always closes it.
func (g *Gateway) serve(conn net.Conn) {
	activeWorkers.Inc()
	defer activeWorkers.Dec()
	log := g.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Warn().Err(err).Msg("close connection")
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			authTotal.WithLabelValues("error").Inc()
			log.Error().Interface("panic", rec).Msg("worker panicked")
		}
	}()

	result, err := g.exchange(g.ctx, conn, log)
	authTotal.WithLabelValues(result).Inc()
	if err != nil {
		log.Error().Err(err).Msg("authentication exchange failed")
	}
}

// exchange runs one credential exchange and reports "ok", "fail" or
// "error".
func (g *Gateway) exchange(ctx context.Context, conn net.Conn, log zerolog.Logger) (string, error) {
	if g.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(g.readTimeout)); err != nil {
			return "error", fmt.Errorf("set read deadline: %w", err)
		}
	}
	r := bufio.NewReaderSize(conn, maxLine)
	user, err := readLine(r)
	if err != nil {
		return "error", fmt.Errorf("read username: %w", err)
	}
	password, err := readLine(r)
	if err != nil {
		return "error", fmt.Errorf("read password: %w", err)
	}

	auth, err := g.authenticator()
	if err != nil {
		return "error", err
	}
	ticket, err := auth.Authenticate(ctx, user, password)
	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		log.Info().Str("user", user).Msg("authentication rejected")
		if err := writeString(conn, failResponse); err != nil {
			return "error", err
		}
		return "fail", nil
	case err != nil:
		return "error", fmt.Errorf("backend %s: %w", g.backend, err)
	case ticket == "":
		return "error", fmt.Errorf("backend %s returned an empty ticket", g.backend)
	}
	if err := writeString(conn, okPrefix+string(ticket)+lineEnd); err != nil {
		return "error", err
	}
	log.Info().Str("user", user).Msg("ticket issued")
	return "ok", nil
}

func (g *Gateway) authenticator() (Authenticator, error) {
	m, err := g.locator.Lookup(g.backend)
	if err != nil {
		return nil, ErrBackendUnavailable(g.backend, err)
	}
	a, ok := m.(Authenticator)
	if !ok {
		return nil, ErrBackendUnavailable(g.backend, fmt.Errorf("module %T cannot authenticate", m))
	}
	return a, nil
}

// readLine returns the next line without its terminator, which is "\n" or
// "\r\n". Only one terminator is removed. A final line cut short by EOF is
// accepted if it is not empty.
func readLine(r *bufio.Reader) (string, error) {
	b, err := r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return "", errLineTooLong
	case errors.Is(err, io.EOF) && len(b) > 0:
	case err != nil:
		return "", err
	}
	line := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
