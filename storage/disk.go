package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type DiskStorage struct {
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath string
	// PublicBase is the external URL of this server, public URLs point back at it
	PublicBase string
	dirs       map[string]bool
	dirsMutex  sync.Mutex
}

func NewDiskStorage(basePath, publicBase string) *DiskStorage {
	return &DiskStorage{
		BasePath:   basePath,
		PublicBase: publicBase,
		dirs:       make(map[string]bool, 10),
	}
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

// getFullPath refuses paths escaping the bucket directory
func (s *DiskStorage) getFullPath(bucket, path string) (string, error) {
	root := filepath.Join(s.BasePath, filepath.Clean("/"+bucket))
	full := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+path)))
	if full == root || !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return full, nil
}

func (s *DiskStorage) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fileName, err := s.getFullPath(bucket, path)
	if err != nil {
		return "", err
	}
	if err = s.createDir(filepath.Dir(fileName)); err != nil {
		return "", err
	}
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fileName)
		return "", err
	}
	return path, nil
}

func (s *DiskStorage) PublicURL(bucket, path string) string {
	return PublicURL(s.PublicBase, bucket, path)
}

// Remove deletes every path, missing files are not an error
func (s *DiskStorage) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		fileName, err := s.getFullPath(bucket, path)
		if err == nil {
			err = os.Remove(fileName)
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Disk remove %s/%s: %v", bucket, path, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *DiskStorage) Serve(bucket, path string, request *http.Request, writer http.ResponseWriter) {
	fileName, err := s.getFullPath(bucket, path)
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	http.ServeFile(writer, request, fileName)
}
