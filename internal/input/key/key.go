package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a host key code.
type Code uint16

const (
	CodeUnknown Code = 0

	CodeBack Code = 4

	Code0 Code = 7
	Code1 Code = 8
	Code2 Code = 9
	Code3 Code = 10
	Code4 Code = 11
	Code5 Code = 12
	Code6 Code = 13
	Code7 Code = 14
	Code8 Code = 15
	Code9 Code = 16

	CodeDpadUp    Code = 19
	CodeDpadDown  Code = 20
	CodeDpadLeft  Code = 21
	CodeDpadRight Code = 22

	CodeA Code = 29
	CodeB Code = 30
	CodeC Code = 31
	CodeD Code = 32
	CodeE Code = 33
	CodeF Code = 34
	CodeG Code = 35
	CodeH Code = 36
	CodeI Code = 37
	CodeJ Code = 38
	CodeK Code = 39
	CodeL Code = 40
	CodeM Code = 41
	CodeN Code = 42
	CodeO Code = 43
	CodeP Code = 44
	CodeQ Code = 45
	CodeR Code = 46
	CodeS Code = 47
	CodeT Code = 48
	CodeU Code = 49
	CodeV Code = 50
	CodeW Code = 51
	CodeX Code = 52
	CodeY Code = 53
	CodeZ Code = 54

	CodeComma      Code = 55
	CodePeriod     Code = 56
	CodeAltLeft    Code = 57
	CodeAltRight   Code = 58
	CodeShiftLeft  Code = 59
	CodeShiftRight Code = 60
	CodeTab        Code = 61
	CodeSpace      Code = 62
	CodeSym        Code = 63
	CodeEnter      Code = 66
	CodeDel        Code = 67
	CodeApostrophe Code = 75
	CodeAt         Code = 77
	CodePageUp     Code = 92
	CodePageDown   Code = 93
	CodeEscape     Code = 111
	CodeForwardDel Code = 112
	CodeCtrlLeft   Code = 113
	CodeCtrlRight  Code = 114

	// CodeDeleteWord is emitted by touch keyboards for a swipe-to-delete gesture.
	CodeDeleteWord Code = 322
)

var codeNames = map[Code]string{
	CodeBack:       "BACK",
	Code0:          "0",
	Code1:          "1",
	Code2:          "2",
	Code3:          "3",
	Code4:          "4",
	Code5:          "5",
	Code6:          "6",
	Code7:          "7",
	Code8:          "8",
	Code9:          "9",
	CodeDpadUp:     "DPAD_UP",
	CodeDpadDown:   "DPAD_DOWN",
	CodeDpadLeft:   "DPAD_LEFT",
	CodeDpadRight:  "DPAD_RIGHT",
	CodeComma:      "COMMA",
	CodePeriod:     "PERIOD",
	CodeAltLeft:    "ALT_LEFT",
	CodeAltRight:   "ALT_RIGHT",
	CodeShiftLeft:  "SHIFT_LEFT",
	CodeShiftRight: "SHIFT_RIGHT",
	CodeTab:        "TAB",
	CodeSpace:      "SPACE",
	CodeSym:        "SYM",
	CodeEnter:      "ENTER",
	CodeDel:        "DEL",
	CodeApostrophe: "APOSTROPHE",
	CodeAt:         "AT",
	CodePageUp:     "PAGE_UP",
	CodePageDown:   "PAGE_DOWN",
	CodeEscape:     "ESCAPE",
	CodeForwardDel: "FORWARD_DEL",
	CodeCtrlLeft:   "CTRL_LEFT",
	CodeCtrlRight:  "CTRL_RIGHT",
	CodeDeleteWord: "DELETE_WORD",
}

var nameToCode map[string]Code

func init() {
	for c := CodeA; c <= CodeZ; c++ {
		codeNames[c] = string(rune('A' + int(c-CodeA)))
	}
	nameToCode = make(map[string]Code, len(codeNames))
	for c, name := range codeNames {
		nameToCode[name] = c
	}
}

// String returns the host name of the code without the KEYCODE_ prefix.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "KEYCODE_" + strconv.Itoa(int(c))
}

// ParseCode parses a code name such as "A", "KEYCODE_A", "dpad_up" or "KEYCODE_322".
func ParseCode(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return CodeUnknown, fmt.Errorf("empty key code")
	}
	if c, ok := nameToCode[name]; ok {
		return c, nil
	}
	name = strings.TrimPrefix(name, "KEYCODE_")
	if c, ok := nameToCode[name]; ok {
		return c, nil
	}
	n, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return CodeUnknown, fmt.Errorf("unknown key code %q", s)
	}
	return Code(n), nil
}

// IsAlphabetic reports whether c is one of the A..Z letter keys.
func (c Code) IsAlphabetic() bool {
	return c >= CodeA && c <= CodeZ
}

// IsShift reports whether c is a Shift key.
func (c Code) IsShift() bool {
	return c == CodeShiftLeft || c == CodeShiftRight
}

// IsCtrl reports whether c is a Ctrl key.
func (c Code) IsCtrl() bool {
	return c == CodeCtrlLeft || c == CodeCtrlRight
}

// IsAlt reports whether c is an Alt key.
func (c Code) IsAlt() bool {
	return c == CodeAltLeft || c == CodeAltRight
}

// IsModifier reports whether c is a modifier key, including Sym.
func (c Code) IsModifier() bool {
	return c.IsShift() || c.IsCtrl() || c.IsAlt() || c == CodeSym
}

// IsCursorMovement reports whether sending c moves the cursor.
func (c Code) IsCursorMovement() bool {
	switch c {
	case CodeDpadUp, CodeDpadDown, CodeDpadLeft, CodeDpadRight, CodePageUp, CodePageDown:
		return true
	}
	return false
}

// Letter returns the lowercase letter of an alphabetic key, or 0.
func (c Code) Letter() rune {
	if !c.IsAlphabetic() {
		return 0
	}
	return rune('a' + int(c-CodeA))
}

// CodeForLetter returns the alphabetic key for r, ignoring case.
func CodeForLetter(r rune) (Code, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return CodeA + Code(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return CodeA + Code(r-'A'), true
	}
	return CodeUnknown, false
}
