package fdio

import (
	"unsafe"

	"github.com/stretchr/testify/mock"
)

// mockSyscallProvider is a mock type for the syscallProvider type.
type mockSyscallProvider struct {
	mock.Mock
}

type mockSyscallProvider_Expecter struct { //nolint:revive,stylecheck
	mock *mock.Mock
}

func (_m *mockSyscallProvider) EXPECT() *mockSyscallProvider_Expecter {
	return &mockSyscallProvider_Expecter{mock: &_m.Mock}
}

// newMockSyscallProvider creates a new instance of mockSyscallProvider. It
// also registers a cleanup function to assert the mocks expectations.
func newMockSyscallProvider(t interface {
	mock.TestingT
	Cleanup(fn func())
},
) *mockSyscallProvider {
	m := &mockSyscallProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Read provides a mock function with given fields: fd, buf, count.
func (_m *mockSyscallProvider) Read(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	ret := _m.Called(fd, buf, count)

	if rf, ok := ret.Get(0).(func(int, unsafe.Pointer, uintptr) (int64, error)); ok {
		return rf(fd, buf, count)
	}

	return ret.Get(0).(int64), ret.Error(1) //nolint:forcetypeassert
}

// Write provides a mock function with given fields: fd, buf, count.
func (_m *mockSyscallProvider) Write(fd int, buf unsafe.Pointer, count uintptr) (int64, error) {
	ret := _m.Called(fd, buf, count)

	if rf, ok := ret.Get(0).(func(int, unsafe.Pointer, uintptr) (int64, error)); ok {
		return rf(fd, buf, count)
	}

	return ret.Get(0).(int64), ret.Error(1) //nolint:forcetypeassert
}

// Close provides a mock function with given fields: fd.
func (_m *mockSyscallProvider) Close(fd int) error {
	ret := _m.Called(fd)

	return ret.Error(0)
}

type mockSyscallProvider_IO_Call struct { //nolint:revive,stylecheck
	*mock.Call
}

func (_c *mockSyscallProvider_IO_Call) Return(n int64, err error) *mockSyscallProvider_IO_Call {
	_c.Call.Return(n, err)

	return _c
}

func (_c *mockSyscallProvider_IO_Call) RunAndReturn(run func(int, unsafe.Pointer, uintptr) (int64, error)) *mockSyscallProvider_IO_Call {
	_c.Call.Return(run, nil)

	return _c
}

func (_c *mockSyscallProvider_IO_Call) Once() *mockSyscallProvider_IO_Call {
	_c.Call.Once()

	return _c
}

func (_c *mockSyscallProvider_IO_Call) Times(i int) *mockSyscallProvider_IO_Call {
	_c.Call.Times(i)

	return _c
}

// Read is a helper method to define mock.On call.
func (_e *mockSyscallProvider_Expecter) Read(fd interface{}, buf interface{}, count interface{}) *mockSyscallProvider_IO_Call {
	return &mockSyscallProvider_IO_Call{Call: _e.mock.On("Read", fd, buf, count)}
}

// Write is a helper method to define mock.On call.
func (_e *mockSyscallProvider_Expecter) Write(fd interface{}, buf interface{}, count interface{}) *mockSyscallProvider_IO_Call {
	return &mockSyscallProvider_IO_Call{Call: _e.mock.On("Write", fd, buf, count)}
}

// Close is a helper method to define mock.On call.
func (_e *mockSyscallProvider_Expecter) Close(fd interface{}) *mock.Call {
	return _e.mock.On("Close", fd)
}
