package system

import (
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// NewHostFS returns the host filesystem. Kernel state under /sys is read
// through it so tests can substitute an in-memory tree (memfs).
func NewHostFS() billy.Filesystem {
	return osfs.New("/")
}

// ReadFirstLine returns the first line of a small kernel attribute file,
// trimmed of surrounding whitespace
func ReadFirstLine(fs billy.Filesystem, name string) (string, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line), nil
}

// IsDir reports whether name exists and is a directory, following symlinks
// (every entry in /sys/class/net is a symlink into /sys/devices)
func IsDir(fs billy.Filesystem, name string) bool {
	fi, err := fs.Stat(name)
	return err == nil && fi.IsDir()
}

// Exists reports whether dir/entry exists
func Exists(fs billy.Filesystem, dir, entry string) bool {
	_, err := fs.Stat(path.Join(dir, entry))
	return err == nil
}

// ListDir returns the names of the entries in dir in directory order. A
// missing dir or one that is not a directory is an error on every
// filesystem, including memfs whose ReadDir reports neither.
func ListDir(fs billy.Filesystem, dir string) ([]string, error) {
	fi, err := fs.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: dir, Err: syscall.ENOTDIR}
	}

	infos, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names, nil
}
