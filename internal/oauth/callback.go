package oauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// CallbackPath is the default path the authorization server redirects to.
const CallbackPath = "/oauth/callback"

const successBody = "Authorization successful. You can close this tab."

// Callback is the outcome of the one redirect the listener accepts.
type Callback struct {
	Code  string
	State string
}

// CallbackListener is a one-shot HTTP listener on the loopback interface.
// It resolves on the first request that carries a code or an error and
// refuses everything after that.
type CallbackListener struct {
	path          string
	expectedState string

	ln  net.Listener
	srv *http.Server

	mu       sync.Mutex
	resolved bool
	result   chan callbackResult

	closeOnce sync.Once
	closeErr  error
}

type callbackResult struct {
	cb  Callback
	err error
}

// NewCallbackHandler returns a listener that is not bound to any socket;
// use it as an http.Handler in tests.
func NewCallbackHandler(path, expectedState string) *CallbackListener {
	if path == "" {
		path = CallbackPath
	}
	return &CallbackListener{
		path:          path,
		expectedState: expectedState,
		result:        make(chan callbackResult, 1),
	}
}

// ListenCallback binds 127.0.0.1:port and serves path. An empty
// expectedState disables the state check.
func ListenCallback(port int, path, expectedState string) (*CallbackListener, error) {
	l := NewCallbackHandler(path, expectedState)

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return nil, errors.Wrapf(err, "binding callback listener on port %d", port)
	}
	l.ln = ln
	l.srv = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		_ = l.srv.Serve(ln)
	}()
	return l, nil
}

// Addr returns the bound address, or nil for an unbound handler.
func (l *CallbackListener) Addr() net.Addr {
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// URL returns the redirect URI served by the listener.
func (l *CallbackListener) URL() string {
	if l.ln == nil {
		return l.path
	}
	return "http://" + l.ln.Addr().String() + l.path
}

// ServeHTTP implements http.Handler.
func (l *CallbackListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != l.path {
		http.NotFound(w, r)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved {
		http.Error(w, "authorization already completed", http.StatusGone)
		return
	}

	q := r.URL.Query()
	switch {
	case q.Get("error") != "":
		msg := q.Get("error")
		if desc := q.Get("error_description"); desc != "" {
			msg += ": " + desc
		}
		http.Error(w, "Authorization failed: "+msg, http.StatusBadRequest)
		l.resolve(callbackResult{err: errors.Wrap(errors.ErrAuthorizationDenied, msg)})
	case q.Get("code") == "":
		// keep waiting for a request that carries one
		http.Error(w, "no code", http.StatusBadRequest)
	case l.expectedState != "" && q.Get("state") != l.expectedState:
		http.Error(w, "Authorization failed: state mismatch", http.StatusBadRequest)
		l.resolve(callbackResult{err: errors.Wrap(errors.ErrAuthorizationDenied, "state mismatch")})
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, successBody)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		l.resolve(callbackResult{cb: Callback{Code: q.Get("code"), State: q.Get("state")}})
	}
}

// resolve must be called with l.mu held.
func (l *CallbackListener) resolve(res callbackResult) {
	l.resolved = true
	l.result <- res
}

// Wait blocks until the listener resolves, ctx is done, or timeout elapses.
// A zero timeout waits indefinitely.
func (l *CallbackListener) Wait(ctx context.Context, timeout time.Duration) (Callback, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-l.result:
		return res.cb, res.err
	case <-expired:
		return Callback{}, errors.Wrapf(errors.ErrAuthorizationTimeout, "no callback within %s", timeout)
	case <-ctx.Done():
		return Callback{}, errors.Wrap(ctx.Err(), "waiting for authorization callback")
	}
}

// Close stops the listener. It is safe to call more than once.
func (l *CallbackListener) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.resolved = true
		l.mu.Unlock()
		if l.srv != nil {
			l.closeErr = l.srv.Close()
		}
	})
	return l.closeErr
}

// FreePort asks the kernel for an unused loopback port.
func FreePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, errors.Wrap(err, "allocating callback port")
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
