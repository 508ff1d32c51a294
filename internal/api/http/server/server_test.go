package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/mocks"
)

func TestHTTPServer_StartServeStop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	listened := make(chan struct{})
	sec := &mocks.SecurityLayer{}
	sec.On("Listen", "tcp", ":0").Return(ln, nil).Run(func(mock.Arguments) { close(listened) })

	srv := NewHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}), ":0")
	assert.Equal(t, ":0", srv.Address())

	served := make(chan error, 1)
	go func() { served <- srv.Start(sec) }()
	<-listened

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, srv.Stop(context.Background()))
	assert.NoError(t, <-served)
}

func TestHTTPServer_Start_ListenError(t *testing.T) {
	sec := &mocks.SecurityLayer{}
	sec.On("Listen", "tcp", ":0").Return(nil, errors.New("address in use"))

	err := NewHTTPServer(http.NotFoundHandler(), ":0").Start(sec)
	assert.ErrorContains(t, err, "address in use")
}
