package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrDevBuild      = errors.New("running a development build")
	ErrAlreadyLatest = errors.New("already on the latest release")
	ErrChecksum      = errors.New("checksum mismatch")
)

// maxDownload bounds any single release asset.
const maxDownload = 128 << 20

// Stage names a step of Update.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageInstall  Stage = "install"
	StageDone     Stage = "done"
)

// UpdateInput selects the release to install. An empty TargetVersion
// means the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is reported when Update enters a stage.
type UpdateProgress struct {
	Stage   Stage
	Message string
}

// Update replaces the running executable with a release build after
// checking the archive against the release checksums file. Builds whose
// version is not a semantic version are refused with ErrDevBuild.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	if progress == nil {
		progress = func(UpdateProgress) {}
	}
	if !semver.IsValid(canonical(input.CurrentVersion)) {
		return ErrDevBuild
	}

	tag := canonical(input.TargetVersion)
	if tag == "" {
		progress(UpdateProgress{StageResolve, "Looking up the latest release..."})
		res, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return err
		}
		if !res.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = canonical(res.LatestVersion)
	} else if !semver.IsValid(tag) {
		return fmt.Errorf("version %q is not a semantic version", input.TargetVersion)
	}

	a, err := assetFor(tag, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	progress(UpdateProgress{StageDownload, fmt.Sprintf("Downloading mrquizzer %s...", tag)})
	archive, sum, err := c.fetch(ctx, c.releaseURL(tag, a.archive))
	if err != nil {
		return fmt.Errorf("download %s: %w", a.archive, err)
	}

	progress(UpdateProgress{StageVerify, "Verifying checksum..."})
	sums, _, err := c.fetch(ctx, c.releaseURL(tag, a.checksums))
	if err != nil {
		return fmt.Errorf("download %s: %w", a.checksums, err)
	}
	want, ok := parseChecksums(sums)[a.archive]
	if !ok {
		return fmt.Errorf("%w: %s is not listed in %s", ErrChecksum, a.archive, a.checksums)
	}
	if !strings.EqualFold(want, sum) {
		return fmt.Errorf("%w: %s has sha256 %s, release lists %s", ErrChecksum, a.archive, sum, want)
	}

	progress(UpdateProgress{StageInstall, "Installing..."})
	bin, err := a.extract(archive)
	if err != nil {
		return err
	}
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := replaceExecutable(target, bin); err != nil {
		return err
	}

	progress(UpdateProgress{StageDone, fmt.Sprintf("Updated to %s.", tag)})
	return nil
}

func (c *Checker) releaseURL(tag, file string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", c.downloadBaseURL, c.owner, c.repo, tag, file)
}

// fetch downloads url and returns the body with its hex sha256.
func (c *Checker) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var body bytes.Buffer
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(&body, h), io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, "", err
	}
	if n > maxDownload {
		return nil, "", fmt.Errorf("%s is larger than %d MiB", url, maxDownload>>20)
	}
	return body.Bytes(), hex.EncodeToString(h.Sum(nil)), nil
}

// asset names the files of one platform build, following the GoReleaser
// default templates.
type asset struct {
	archive   string
	checksums string
	binary    string
}

func assetFor(tag, goos, goarch string) (asset, error) {
	switch goarch {
	case "amd64", "arm64":
	default:
		return asset{}, fmt.Errorf("no release builds for %s/%s", goos, goarch)
	}
	ext := ".tar.gz"
	bin := binaryName
	switch goos {
	case "linux", "darwin":
	case "windows":
		ext = ".zip"
		bin += ".exe"
	default:
		return asset{}, fmt.Errorf("no release builds for %s/%s", goos, goarch)
	}

	version := strings.TrimPrefix(tag, "v")
	return asset{
		archive:   fmt.Sprintf("%s_%s_%s_%s%s", binaryName, version, goos, goarch, ext),
		checksums: fmt.Sprintf("%s_%s_checksums.txt", binaryName, version),
		binary:    bin,
	}, nil
}

// parseChecksums reads sha256sum output: "<hex>  <file>" per line.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		sums[strings.TrimPrefix(fields[1], "*")] = fields[0]
	}
	return sums
}

// extract returns the executable from a release archive.
func (a asset) extract(archive []byte) ([]byte, error) {
	if strings.HasSuffix(a.archive, ".zip") {
		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", a.archive, err)
		}
		for _, f := range zr.File {
			if path.Base(f.Name) != a.binary || f.FileInfo().IsDir() {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer func() { _ = rc.Close() }()
			return io.ReadAll(io.LimitReader(rc, maxDownload))
		}
		return nil, fmt.Errorf("%s does not contain %s", a.archive, a.binary)
	}

	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", a.archive, err)
	}
	defer func() { _ = gz.Close() }()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s does not contain %s", a.archive, a.binary)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", a.archive, err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == a.binary {
			return io.ReadAll(io.LimitReader(tr, maxDownload))
		}
	}
}

// replaceExecutable writes bin next to target and renames it over target,
// keeping target's permissions. On Windows the running file is moved aside
// first since it cannot be overwritten.
func replaceExecutable(target string, bin []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(bin); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}

	if runtime.GOOS == "windows" {
		old := target + ".old"
		_ = os.Remove(old)
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("move old executable aside: %w", err)
		}
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("install %s: %w", target, err)
	}
	return nil
}
