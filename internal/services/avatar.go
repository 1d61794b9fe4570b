package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// MaxAvatarBytes is the largest upload accepted for processing.
	MaxAvatarBytes = 1_000_000
	// AvatarSide is the width and height of every stored avatar.
	AvatarSide = 250
)

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// CheckAvatarUpload rejects an upload from its metadata alone.
func CheckAvatarUpload(filename string, size int64) error {
	if size > MaxAvatarBytes {
		return newValidationError("avatar", fmt.Sprintf("file is larger than %d bytes", MaxAvatarBytes))
	}
	if !avatarExtensions[strings.ToLower(filepath.Ext(filename))] {
		return newValidationError("avatar", "Invalid File Type")
	}
	return nil
}

// ProcessAvatar decodes an image and re-encodes it as a 250x250 PNG. The
// aspect ratio is not preserved.
func ProcessAvatar(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, newValidationError("avatar", "file is not a readable image")
	}
	resized := imaging.Resize(img, AvatarSide, AvatarSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
