package fuzzy

// Soundex computes the American Soundex code for name: the first letter
// followed by three digits, adjacent same-digit consonants merged and
// separated by H/W collapsed per the classic algorithm. Letters outside
// A-Z are ignored; a name with no letters returns "".
func Soundex(name string) string {
	letters := onlyLetters(name)
	if len(letters) == 0 {
		return ""
	}

	code := string(letters[0])
	last := soundexDigit(letters[0])

	for i := 1; i < len(letters) && len(code) < 4; i++ {
		c := letters[i]
		if c == 'H' || c == 'W' {
			continue
		}
		d := soundexDigit(c)
		if d == 0 {
			last = 0
			continue
		}
		if d != last {
			code += string(d)
			last = d
		}
	}

	for len(code) < 4 {
		code += "0"
	}
	return code
}

// SoundexMatch reports whether a and b share a Soundex code. Two empty
// inputs, or one empty input, never match.
func SoundexMatch(a, b string) bool {
	sa, sb := Soundex(a), Soundex(b)
	if sa == "" || sb == "" {
		return false
	}
	return sa == sb
}

func soundexDigit(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return 0
	}
}

func onlyLetters(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c >= 'A' && c <= 'Z':
			out = append(out, c)
		}
	}
	return out
}
