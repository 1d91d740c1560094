package lexer

var defaultKeywords = []string{
	// control flow
	"if", "else", "for", "while", "do", "switch", "case", "default",
	"break", "continue", "return", "goto", "fallthrough", "select",
	"range", "defer", "go", "try", "catch", "throw", "finally",

	// declarations
	"struct", "union", "enum", "typedef", "class", "interface", "func",
	"package", "import", "namespace", "using", "template", "typename",
	"var", "let", "const", "type", "map", "chan",

	// modifiers
	"static", "extern", "inline", "volatile", "register", "public",
	"private", "protected", "virtual", "override", "final", "mut",

	// operators and literals
	"sizeof", "new", "delete", "this", "true", "false", "nil", "null",
	"nullptr",
}

var defaultTypes = []string{
	"void", "char", "short", "int", "long", "float", "double", "signed",
	"unsigned", "bool", "auto", "string", "byte", "rune", "error", "any",
	"int8", "int16", "int32", "int64", "uint", "uint8", "uint16",
	"uint32", "uint64", "uintptr", "float32", "float64",
	"size_t", "ssize_t", "int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
}
