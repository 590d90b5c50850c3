package images

import "os"

// WriteFile persists result bytes to the destination path, overwriting any
// existing file.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
