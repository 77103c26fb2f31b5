//go:build darwin

package capture

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework CoreGraphics
#import <Cocoa/Cocoa.h>
#import <CoreGraphics/CoreGraphics.h>

// 没有屏幕录制权限时其他进程的窗口标题为空
int screenRecordingGranted() {
    if (@available(macOS 10.15, *)) {
        CFArrayRef windows = CGWindowListCopyWindowInfo(
            kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
            kCGNullWindowID
        );
        if (windows == NULL) {
            return 0;
        }

        CFIndex count = CFArrayGetCount(windows);
        int named = 0;
        for (CFIndex i = 0; i < count; i++) {
            CFDictionaryRef w = (CFDictionaryRef)CFArrayGetValueAtIndex(windows, i);
            CFStringRef name = (CFStringRef)CFDictionaryGetValue(w, kCGWindowName);
            if (name != NULL && CFStringGetLength(name) > 0) {
                named = 1;
                break;
            }
        }
        CFRelease(windows);
        return (count == 0 || named) ? 1 : 0;
    }
    return 1;
}

void openScreenRecordingSettings() {
    NSString *url = @"x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture";
    [[NSWorkspace sharedWorkspace] openURL:[NSURL URLWithString:url]];
}
*/
import "C"

// ScreenRecordingGranted 是否已授予屏幕录制权限，截取窗口与读取窗口标题都需要
func ScreenRecordingGranted() bool {
	return C.screenRecordingGranted() == 1
}

// OpenScreenRecordingSettings 打开系统设置的屏幕录制页面
func OpenScreenRecordingSettings() {
	C.openScreenRecordingSettings()
}

// PermissionHint 缺少权限时的提示
func PermissionHint() string {
	if ScreenRecordingGranted() {
		return ""
	}
	return "缺少屏幕录制权限，无法截取游戏窗口\n" +
		"请在 系统设置 > 隐私与安全性 > 屏幕录制 中授权，授权后需要重启"
}
