// Package fs provides the filesystem primitives the project model needs:
// atomic replace-by-rename writes and cross-process advisory locking, so
// that writes to shared on-disk state never corrupt it if a process crashes
// or races another process mid-write.
package fs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
	flock "github.com/theckman/go-flock"
)

// AtomicWriteFile writes data to path by writing to a temp file in the same
// directory and renaming it over path, so a reader never observes a
// truncated or partially-written file.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := ioutil.TempFile(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return errors.Wrap(err, "could not create temp file for atomic write")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "could not write temp file for atomic write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "could not close temp file for atomic write")
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "could not set permissions on temp file for atomic write")
	}

	if err := renameWithFallback(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "could not replace destination file")
	}
	return nil
}

// renameWithFallback attempts to rename src to dest, falling back to a
// copy-then-remove if the rename fails with a cross-device link error.
func renameWithFallback(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return err
	}

	if runtime.GOOS != "windows" {
		if errno, ok := linkErr.Err.(syscall.Errno); ok && errno == syscall.EXDEV {
			return copyThenRemove(src, dest)
		}
	}
	return err
}

func copyThenRemove(src, dest string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}

// FileLock returns an advisory, cross-process file lock guarding path. Both
// readers and writers of path take this lock exclusively around their
// operation; the lock file itself is never read, only used as a mutex
// handle, so there is no benefit to a separate shared-lock mode here.
func FileLock(path string) *flock.Flock {
	return flock.NewFlock(path + ".lock")
}
