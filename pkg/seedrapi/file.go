package seedrapi

import "os"

func createFile(path string) (*os.File, error) {
	return os.Create(path)
}

func removeIfExists(path string) {
	_ = os.Remove(path)
}

// replaceFile deletes any pre-existing dst then renames src to dst, the
// clean-completion half of the streaming rule in spec §4.1.
func replaceFile(src, dst string) error {
	_ = os.Remove(dst)
	return os.Rename(src, dst)
}
