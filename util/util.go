package util

// Byte classifiers shared by the OOPS tokenizer and the assembler scanner.

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsLetterOrNumber accepts the characters of an OOPS identifier after the first one.
func IsLetterOrNumber(b byte) bool {
	return IsLetter(b) || IsNumber(b)
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

// IsLetterOrUnderscoreOrNumber accepts the characters of an assembler label after the first one.
func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == '\v'
}

// IsPrintable reports whether b may appear inside a character literal.
func IsPrintable(b byte) bool {
	return b >= ' ' && b <= '~'
}
