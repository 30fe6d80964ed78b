package render

import (
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"
)

// DetectFileType names the kind of file for the status bar. The file name
// is tried against chroma's lexer registry first, then the leading bytes
// are classified. Content with NULs or mostly control bytes is "binary".
func DetectFileType(filename string, sample []byte) string {
	if lexer := lexers.Match(filename); lexer != nil {
		return lexer.Config().Name
	}

	if len(sample) == 0 {
		return "empty"
	}
	if looksBinary(sample) {
		return "binary"
	}

	if lang := enry.GetLanguage(filename, sample); lang != "" {
		return lang
	}
	if lexer := lexers.Analyse(string(sample)); lexer != nil {
		return lexer.Config().Name
	}
	return "plaintext"
}

func looksBinary(sample []byte) bool {
	if enry.IsBinary(sample) {
		return true
	}

	control := 0
	for _, b := range sample {
		if !Printable(b) && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return control*10 > len(sample)*3
}
