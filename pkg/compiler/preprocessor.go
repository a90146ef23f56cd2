package compiler

import "strings"

// JoinLines concatenates the lines of src without reinserting line breaks,
// the way the driver reads its input file. Source newlines are therefore
// never separators: statements end at ';'.
//
// Only '\n' is removed; a trailing '\r' stays and lexes as whitespace.
func JoinLines(src string) string {
	return strings.ReplaceAll(src, "\n", "")
}
