//go:build windows

package platform

import "testing"

func TestKeyFromVK(t *testing.T) {
	tests := map[uintptr]Key{
		vkEscape:  KeyEscape,
		vkControl: KeyControl,
		vkShift:   KeyShift,
		vkLeft:    KeyLeft,
		vkDown:    KeyDown,
		vkF1:      KeyF1,
		vkF1 + 2:  KeyF3,
		vkF6:      KeyF6,
		vkF6 + 1:  KeyUnknown,
		'A':       KeyUnknown,
	}
	for vk, want := range tests {
		if got := keyFromVK(vk); got != want {
			t.Errorf("keyFromVK(0x%x) = %v, want %v", vk, got, want)
		}
	}
}

func TestPointLParamIsSigned(t *testing.T) {
	// x = -5, y = 300
	lParam := uintptr(uint16(0xFFFB)) | uintptr(300)<<16
	if got := pointLParam(lParam); got != (Point{X: -5, Y: 300}) {
		t.Fatalf("pointLParam = %+v, want {-5 300}", got)
	}
}

func TestHotkeyModifiers(t *testing.T) {
	got := hotkeyModifiers(ModCtrl | ModAlt)
	want := uintptr(modControl | modAlt | modNoRepeat)
	if got != want {
		t.Fatalf("hotkeyModifiers = 0x%x, want 0x%x", got, want)
	}
}
