//go:build !darwin

package capture

// ScreenRecordingGranted 非 macOS 系统不需要额外权限
func ScreenRecordingGranted() bool {
	return true
}

// OpenScreenRecordingSettings 非 macOS 系统为空实现
func OpenScreenRecordingSettings() {}

// PermissionHint 缺少权限时的提示
func PermissionHint() string {
	return ""
}
