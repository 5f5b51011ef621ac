//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

type mutexLock struct {
	name   string
	handle windows.Handle
}

func acquireRuntimeLock(name string) (RuntimeLock, error) {
	token := windows.GetCurrentProcessToken()
	user, err := token.GetTokenUser()
	if err != nil {
		return nil, fmt.Errorf("read current user token: %w", err)
	}
	objectName := `Local\` + name + "-" + sanitizeLockPart(user.User.Sid.String(), "sid")

	namePtr, err := windows.UTF16PtrFromString(objectName)
	if err != nil {
		return nil, fmt.Errorf("encode runtime mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		if handle != 0 {
			_ = windows.CloseHandle(handle)
		}
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			return nil, &AlreadyRunningError{Name: name}
		}

		return nil, fmt.Errorf("create runtime mutex: %w", err)
	}

	return &mutexLock{name: name, handle: handle}, nil
}

func (l *mutexLock) Name() string {
	return l.name
}

func (l *mutexLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("close runtime mutex: %w", err)
	}

	return nil
}
