// Package storage copies downloaded archives to an rclone destination.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/rclone/rclone/backend/all"
	"github.com/rclone/rclone/fs"
	"github.com/rclone/rclone/fs/config"
	"github.com/rclone/rclone/fs/config/configfile"
	"github.com/rclone/rclone/fs/operations"
	zlog "github.com/rs/zerolog/log"
)

// RemoteFile describes an archive after it was copied
type RemoteFile struct {
	Dest    string
	Name    string
	Size    int64
	ModTime time.Time
}

var initOnce sync.Once

// Init prepares rclone. An empty configPath uses rclone's default config
// location. Only the first call has effect.
func Init(configPath string) {
	initOnce.Do(func() {
		if configPath != "" {
			config.SetConfigPath(configPath)
		}

		configfile.Install()

		// rclone logs through the standard logger; keep it off the menus
		log.SetOutput(io.Discard)

		ci := fs.GetConfig(context.Background())
		ci.LogLevel = fs.LogLevelEmergency
		ci.StatsLogLevel = fs.LogLevelEmergency
		ci.UseJSONLog = false
		ci.Progress = false
	})
}

// ExpandDest expands ~ and makes relative local paths absolute.
// rclone remotes are returned unchanged.
func ExpandDest(dest string) string {
	if dest == "" || isRemote(dest) {
		return dest
	}
	if dest == "~" || strings.HasPrefix(dest, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return dest
		}
		dest = filepath.Join(home, strings.TrimPrefix(dest[1:], "/"))
	}
	if abs, err := filepath.Abs(dest); err == nil {
		return abs
	}
	return dest
}

// isRemote reports whether dest names an rclone remote ("name:path").
// A Windows drive letter is a local path.
func isRemote(dest string) bool {
	return strings.Contains(dest, ":") && filepath.VolumeName(dest) == ""
}

// CheckDestination verifies that dest exists and can be listed
func CheckDestination(ctx context.Context, dest string) error {
	fdst, err := fs.NewFs(ctx, dest)
	if err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}

	if _, err := fdst.List(ctx, ""); err != nil {
		return fmt.Errorf("cannot access destination: %w", err)
	}
	return nil
}

// CopyArchive copies the local file at localPath into dest, keeping its name
func CopyArchive(ctx context.Context, localPath, dest string) (*RemoteFile, error) {
	localDir := filepath.Dir(localPath)
	fileName := filepath.Base(localPath)

	fsrc, err := fs.NewFs(ctx, localDir)
	if err != nil {
		return nil, fmt.Errorf("parsing local path: %w", err)
	}

	fdst, err := fs.NewFs(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("parsing destination: %w", err)
	}

	srcObj, err := fsrc.NewObject(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("getting source object: %w", err)
	}

	zlog.Debug().Str("file", fileName).Str("dest", dest).Int64("size", srcObj.Size()).Msg("copying archive")

	dstObj, err := operations.Copy(ctx, fdst, nil, srcObj.Remote(), srcObj)
	if err != nil {
		return nil, fmt.Errorf("copying archive: %w", err)
	}

	// Copy returns a nil object on dry runs
	if dstObj == nil {
		dstObj, err = fdst.NewObject(ctx, fileName)
		if err != nil {
			return nil, fmt.Errorf("reading copied archive: %w", err)
		}
	}

	return &RemoteFile{
		Dest:    dest,
		Name:    dstObj.Remote(),
		Size:    dstObj.Size(),
		ModTime: dstObj.ModTime(ctx),
	}, nil
}
