package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the buffer's line ending style.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// DetectLineEnding returns CRLF if the text contains a CRLF pair, LF otherwise.
func DetectLineEnding(text string) LineEnding {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\r' && text[i+1] == '\n' {
			return LineEndingCRLF
		}
	}
	return LineEndingLF
}
