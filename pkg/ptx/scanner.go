// Package ptx scans PTX assembly text for .entry kernel declarations and
// recovers each parameter's byte width, so the registry can later pair a
// device_name string with the argument layout a launch will need to
// marshal.
//
// The scanner is deliberately permissive: PTX emitted by different
// compiler versions varies in whitespace and in directives placed between
// .entry and the parameter list, and a type tag the scanner doesn't
// recognize must not abort the scan — it contributes a zero-width
// parameter instead, matching the reference parser's "unknown type" path.
package ptx

const (
	// maxNameLen bounds how many bytes of a kernel name are kept: at
	// most maxNameLen-1, the size of the reference parser's fixed
	// MAX_FUNCTION_NAME buffer less its NUL terminator.
	maxNameLen = 1024

	// maxArgs bounds how many parameters are recorded per kernel; the
	// reference parser allocates a fixed MAX_ARGS array and stops at
	// this count.
	maxArgs = 128
)

// Kernel is one .entry declaration recovered from a PTX text section.
type Kernel struct {
	Name string
	// ArgWidths holds one entry per .param clause found in the kernel's
	// parameter list, in declaration order. A width of 0 means the
	// clause's type tag was not recognized (still counted as a
	// parameter, just with unknown width) or the array-length suffix
	// could not be parsed.
	ArgWidths []int
	// Visible records whether the declaration was preceded by a
	// .visible directive immediately before .entry. Diagnostic only —
	// it does not change how the kernel is registered or launched.
	Visible bool
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// typeWidth returns the byte size of a PTX scalar type tag (the bytes
// immediately following the '.' of a .param clause's type, e.g. "u32" or
// "f64"), or 0 if the tag is not a recognized width-bearing type.
func typeWidth(tag []byte) int {
	if len(tag) == 0 {
		return 0
	}
	switch tag[0] {
	case 'u', 's', 'f':
		tag = tag[1:]
	default:
		return 0
	}
	switch {
	case len(tag) >= 1 && tag[0] == '8':
		return 1
	case len(tag) >= 2 && tag[0] == '1' && tag[1] == '6':
		return 2
	case len(tag) >= 2 && tag[0] == '3' && tag[1] == '2':
		return 4
	case len(tag) >= 2 && tag[0] == '6' && tag[1] == '4':
		return 8
	default:
		return 0
	}
}

// Scan walks PTX text and returns every .entry kernel declaration found,
// with one ArgWidths slot per .param clause in its parameter list.
func Scan(text []byte) []Kernel {
	var kernels []Kernel
	n := len(text)

	for i := 0; i < n; i++ {
		if text[i] != '.' || i+6 > n || string(text[i+1:i+6]) != "entry" {
			continue
		}

		visible := precededByVisible(text, i)

		i += len(".entry")

		// Skip to the start of the name: the first alnum/_ byte.
		for i < n && !isNameByte(text[i]) {
			i++
		}

		nameStart := i
		for i < n && isNameByte(text[i]) && i-nameStart < maxNameLen-1 {
			i++
		}
		name := string(text[nameStart:i])
		// Keep advancing past any remaining name bytes beyond the
		// ceiling so the scan position stays correct even though the
		// recorded name was truncated.
		for i < n && isNameByte(text[i]) {
			i++
		}

		// Find the arg-list opener or the function body opener,
		// whichever comes first; directives like .maxntid/.reqntid may
		// appear in between and are skipped over.
		for i < n && text[i] != '(' && text[i] != '{' {
			i++
		}

		var widths []int
		if i < n && text[i] == '(' {
			widths, i = scanParams(text, i)
		}

		kernels = append(kernels, Kernel{Name: name, ArgWidths: widths, Visible: visible})

		if i > 0 {
			i--
		}
	}

	return kernels
}

// precededByVisible reports whether the nearest non-whitespace directive
// token before offset entryPos is ".visible".
func precededByVisible(text []byte, entryPos int) bool {
	j := entryPos - 1
	for j >= 0 && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
		j--
	}
	end := j + 1
	for j >= 0 && isNameByte(text[j]) {
		j--
	}
	if j < 0 || text[j] != '.' {
		return false
	}
	return string(text[j+1:end]) == "visible"
}

// scanParams parses a .param clause list starting at the '(' of a
// kernel's parameter list, returning one width per clause found and the
// index of the ')' that closed the list (or n if the list never closed).
func scanParams(text []byte, open int) ([]int, int) {
	n := len(text)
	i := open + 1
	var widths []int

	for len(widths) < maxArgs {
		// Skip to the next clause: a '.' introduces one, ')' ends the
		// list.
		for i < n && text[i] != '.' && text[i] != ')' {
			i++
		}
		if i >= n || text[i] == ')' {
			break
		}

		if i+len(".param") > n || string(text[i:i+6]) != ".param" {
			i++
			continue
		}

		width, next := scanOneParam(text, i+len(".param"))
		widths = append(widths, width)
		i = next

		if i < n && text[i] == ')' {
			break
		}
	}

	for i < n && text[i] != ')' {
		i++
	}
	return widths, i
}

// scanOneParam parses a single .param clause's type tag and optional
// [N] array-length suffix, starting just past the ".param" literal.
// It stops at the next ',' or ')' or at the end of text.
func scanOneParam(text []byte, start int) (int, int) {
	n := len(text)
	i := start
	width := 0

	for i < n {
		switch text[i] {
		case '.':
			tagStart := i + 1
			j := tagStart
			for j < n && isNameByte(text[j]) {
				j++
			}
			// A clause can carry several dot-tokens (".param .u64 .ptr
			// .global .align 8 name"); only a recognized type tag may
			// set the width — an unrecognized modifier token must not
			// clobber a width already found earlier in the clause.
			if w := typeWidth(text[tagStart:j]); w != 0 {
				width = w
			}
			i = j
		case '[':
			end := i + 1
			for end < n && text[end] != ']' {
				end++
			}
			count := parseUint(text[i+1 : end])
			width *= count
			if end < n {
				end++
			}
			i = end
		case ',', ')':
			return width, i
		default:
			i++
		}
	}
	return width, i
}

func parseUint(digits []byte) int {
	n := 0
	for _, b := range digits {
		if b < '0' || b > '9' {
			continue
		}
		n = n*10 + int(b-'0')
	}
	return n
}
