// Package archive rebuilds the HWPX ZIP container. The consuming
// application is sensitive to the physical member order and to the
// compression method of individual members, independent of the manifest:
// the mimetype marker must come first and uncompressed, and images and
// script bundles must be stored rather than deflated.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mimetype is the container's self-identification marker: the exact content
// of the first archive member.
const Mimetype = "application/hwp+zip"

// MimetypePath is the fixed path of the mimetype member.
const MimetypePath = "mimetype"

// MinArchiveSize is the smallest plausible size for a reassembled document.
// Anything smaller means the template fetch was truncated; emitting it would
// produce a byte-valid but empty document.
const MinArchiveSize = 10 * 1024

// ErrArchiveSanity is returned when the reassembled archive is implausibly
// small.
var ErrArchiveSanity = errors.New("reassembled archive below minimum plausible size")

// MemberOrder is the fixed physical member order of the container. Members
// absent from the template are skipped; members never change position.
var MemberOrder = []string{
	MimetypePath,
	"version.xml",
	"Contents/header.xml",
	"Contents/section0.xml",
	"Preview/PrvText.txt",
	"Scripts/headerScripts",
	"Scripts/sourceScripts",
	"settings.xml",
	"Preview/PrvImage.png",
	"META-INF/container.rdf",
	"Contents/content.hpf",
	"META-INF/container.xml",
	"META-INF/manifest.xml",
}

// ReadParts opens a template archive and returns its members by path.
func ReadParts(data []byte) (map[string][]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening template archive: %w", err)
	}

	parts := make(map[string][]byte, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening member %s: %w", file.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading member %s: %w", file.Name, err)
		}
		parts[file.Name] = raw
	}
	return parts, nil
}

// Reassemble writes a new archive in the fixed member order. A member
// present in modified is written from that string (UTF-8) instead of the
// original bytes. The mimetype member is always emitted first with its
// literal content and the Store method, regardless of the template.
func Reassemble(original map[string][]byte, modified map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, path := range MemberOrder {
		var data []byte
		switch {
		case path == MimetypePath:
			data = []byte(Mimetype)
		case hasPart(original, modified, path):
			if text, ok := modified[path]; ok {
				data = []byte(text)
			} else {
				data = original[path]
			}
		default:
			// Optional member the template omits.
			continue
		}

		header := &zip.FileHeader{
			Name:   path,
			Method: zip.Deflate,
		}
		if stored(path) {
			header.Method = zip.Store
		}
		member, err := writer.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("creating member %s: %w", path, err)
		}
		if _, err := member.Write(data); err != nil {
			return nil, fmt.Errorf("writing member %s: %w", path, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	if buf.Len() < MinArchiveSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrArchiveSanity, buf.Len())
	}
	return buf.Bytes(), nil
}

func hasPart(original map[string][]byte, modified map[string]string, path string) bool {
	if _, ok := modified[path]; ok {
		return true
	}
	_, ok := original[path]
	return ok
}

// stored reports whether a member uses the Store method: the mimetype
// marker, images, and script bundles.
func stored(path string) bool {
	if path == MimetypePath {
		return true
	}
	if strings.HasSuffix(path, ".png") {
		return true
	}
	return strings.HasPrefix(path, "Scripts/")
}
