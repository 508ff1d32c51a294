package mocks

import (
	"net"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// SecurityLayer is a mock type for the SecurityLayer type
type SecurityLayer struct {
	mock.Mock
}

var _ model.SecurityLayer = (*SecurityLayer)(nil)

// Listen provides a mock function with given fields: protocol, addr
func (_m *SecurityLayer) Listen(protocol string, addr string) (net.Listener, error) {
	ret := _m.Called(protocol, addr)
	var l net.Listener
	if v := ret.Get(0); v != nil {
		l = v.(net.Listener)
	}
	return l, ret.Error(1)
}
