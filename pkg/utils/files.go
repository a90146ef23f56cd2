package utils

import (
	"path/filepath"
	"strings"
)

// AsmExt is the extension given to listings written next to their input.
const AsmExt = ".asm"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath returns the absolute listing path for inPath. A non-empty
// override wins; otherwise the input's extension is replaced by AsmExt.
func OutputPath(inPath, override string) (string, error) {
	if override != "" {
		full, _, err := GetPathInfo(override)
		return full, err
	}

	full, dir, err := GetPathInfo(inPath)
	if err != nil {
		return "", err
	}
	base := filepath.Base(full)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+AsmExt), nil
}
