package recindex

import "os"

func osOpenWrite(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY, 0o644)
}
