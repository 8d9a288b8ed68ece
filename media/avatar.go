// Package media stores uploaded avatar images on disk, resized to a fixed
// width before writing.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrInvalidImage reports an upload that could not be decoded as an image.
var ErrInvalidImage = errors.New("media: invalid image")

const avatarWidth = 200

type AvatarStore struct {
	dir string
}

func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", dir, err)
	}
	return &AvatarStore{dir: dir}, nil
}

// Save decodes, scales to the avatar width (height follows the aspect
// ratio), writes a PNG under a generated name and returns that name.
func (s *AvatarStore) Save(r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrInvalidImage
	}
	resized := imaging.Resize(img, avatarWidth, 0, imaging.Lanczos)

	name := uuid.New().String() + ".png"
	if err := imaging.Save(resized, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("saving avatar: %w", err)
	}
	return name, nil
}
