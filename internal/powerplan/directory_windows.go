//go:build windows

package powerplan

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"
)

var (
	powrprof                  = windows.NewLazySystemDLL("powrprof.dll")
	procPowerEnumerate        = powrprof.NewProc("PowerEnumerate")
	procPowerReadFriendlyName = powrprof.NewProc("PowerReadFriendlyName")
	procPowerGetActiveScheme  = powrprof.NewProc("PowerGetActiveScheme")
	procPowerSetActiveScheme  = powrprof.NewProc("PowerSetActiveScheme")
)

// POWER_DATA_ACCESSOR value selecting scheme enumeration.
const accessScheme = 16

type windowsDirectory struct{}

func systemDirectory() Directory { return windowsDirectory{} }

// ListPlans walks PowerEnumerate in ascending index order until the OS
// reports no further schemes. Schemes whose friendly name cannot be
// read are skipped, matching the tray's menu behavior.
func (windowsDirectory) ListPlans() ([]Plan, error) {
	var plans []Plan
	for index := uint32(0); ; index++ {
		var raw [16]byte
		size := uint32(len(raw))
		status, _, _ := procPowerEnumerate.Call(
			0, 0, 0,
			uintptr(accessScheme),
			uintptr(index),
			uintptr(unsafe.Pointer(&raw[0])),
			uintptr(unsafe.Pointer(&size)),
		)
		if status != 0 {
			break
		}
		name, err := readFriendlyName(&raw)
		if err != nil {
			continue
		}
		plans = append(plans, Plan{ID: guidBytesToUUID(raw), Name: name})
	}
	return plans, nil
}

func (windowsDirectory) ActivePlan() (uuid.UUID, error) {
	var p *[16]byte
	status, _, _ := procPowerGetActiveScheme.Call(0, uintptr(unsafe.Pointer(&p)))
	if status != 0 || p == nil {
		return uuid.Nil, ErrNoActivePlan
	}
	id := guidBytesToUUID(*p)
	windows.LocalFree(windows.Handle(unsafe.Pointer(p)))
	return id, nil
}

func (windowsDirectory) SetActivePlan(id uuid.UUID) error {
	raw := uuidToGUIDBytes(id)
	status, _, _ := procPowerSetActiveScheme.Call(0, uintptr(unsafe.Pointer(&raw[0])))
	if status != 0 {
		return fmt.Errorf("powerplan: set active scheme %s: status %d", id, status)
	}
	return nil
}

// readFriendlyName performs the usual two-call size-then-read dance.
func readFriendlyName(raw *[16]byte) (string, error) {
	var size uint32
	status, _, _ := procPowerReadFriendlyName.Call(
		0, uintptr(unsafe.Pointer(&raw[0])), 0, 0,
		0, uintptr(unsafe.Pointer(&size)),
	)
	if status != 0 || size == 0 {
		return "", fmt.Errorf("powerplan: read friendly name size: status %d", status)
	}
	buf := make([]uint16, (size+1)/2)
	status, _, _ = procPowerReadFriendlyName.Call(
		0, uintptr(unsafe.Pointer(&raw[0])), 0, 0,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)),
	)
	if status != 0 {
		return "", fmt.Errorf("powerplan: read friendly name: status %d", status)
	}
	return windows.UTF16ToString(buf), nil
}
