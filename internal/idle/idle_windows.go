//go:build windows

package idle

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount64   = kernel32.NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// osIdleSeconds returns how long the user has been idle on Windows,
// via GetLastInputInfo (keyboard + mouse). The 64-bit tick counter
// avoids the 49-day wrap of GetTickCount; a negative difference is
// clamped to 0 anyway.
func osIdleSeconds() int {
	var info lastInputInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0 // API failed, assume active
	}

	now, _, _ := procGetTickCount64.Call()
	then := uint64(info.dwTime)
	if uint64(now) < then {
		return 0
	}
	return int((uint64(now) - then) / 1000)
}
